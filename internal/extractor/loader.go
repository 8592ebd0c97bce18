package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads the document at path and decodes it to UTF-8.
// The encoding is detected from a BOM, a <meta charset> declaration, or
// falls back to the HTML5 default.
func Load(path string) (*model.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDocumentUnreadable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDocumentUnreadable, path)
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is the document the user asked to check
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDocumentUnreadable, path, err)
	}

	content, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDocumentUnparseable, path, err)
	}
	return model.NewDocument(path, content), nil
}

// decode sniffs raw and converts it to a UTF-8 string.
func decode(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if ct := http.DetectContentType(raw); !strings.HasPrefix(ct, "text/") {
		return "", fmt.Errorf("detected content type %q", ct)
	}

	enc, name, _ := charset.DetermineEncoding(raw, "text/html")
	if name == "utf-8" {
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	}
	out, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(raw)))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return string(out), nil
}
