package resolver

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// Local resolves internal and anchor references of one document.
type Local struct {
	doc *model.Document
}

// NewLocal creates a Local resolver for doc.
func NewLocal(doc *model.Document) *Local {
	return &Local{doc: doc}
}

// Resolve returns the outcome for an internal or anchor reference.
// Calling it twice against an unchanged filesystem yields the same outcome.
func (l *Local) Resolve(ref model.Reference) model.Outcome {
	switch ref.Category {
	case model.CategoryInternal:
		return l.resolvePath(ref.URL)
	case model.CategoryAnchor:
		return l.resolveAnchor(ref.URL)
	default:
		return model.Error("not a local reference: " + string(ref.Category))
	}
}

// resolvePath checks that the file an internal reference names exists.
// A leading "/" is treated as relative to the document directory, since
// there is no server root to resolve against.
func (l *Local) resolvePath(raw string) model.Outcome {
	target := strings.TrimPrefix(raw, "/")
	target, _, _ = strings.Cut(target, "?")
	target, _, _ = strings.Cut(target, "#")
	if target == "" {
		return model.OK("Same page reference")
	}

	for _, candidate := range pathCandidates(target) {
		if l.exists(candidate) {
			return model.OK("File exists")
		}
	}
	return model.Error("File not found: " + target)
}

// pathCandidates returns the unescaped form of target first when it
// contains percent escapes, then the literal form.
func pathCandidates(target string) []string {
	if !strings.Contains(target, "%") {
		return []string{target}
	}
	unescaped, err := url.PathUnescape(target)
	if err != nil || unescaped == target {
		return []string{target}
	}
	return []string{unescaped, target}
}

func (l *Local) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(l.doc.Dir(), filepath.FromSlash(rel)))
	return err == nil
}

// resolveAnchor searches the raw document for an id or name attribute
// whose value is exactly the fragment.
func (l *Local) resolveAnchor(raw string) model.Outcome {
	fragment := strings.TrimPrefix(raw, "#")
	if fragment == "" {
		return model.OK("Same page reference")
	}

	if attributePattern("id", fragment).MatchString(l.doc.Content) {
		return model.OK("Anchor found")
	}
	if attributePattern("name", fragment).MatchString(l.doc.Content) {
		return model.OK("Anchor found (name attribute)")
	}
	return model.Error("Anchor not found: " + fragment)
}

// attributePattern matches attr=value with an optional quote and a value
// boundary, so "#intro" does not match id="introduction".
func attributePattern(attr, value string) *regexp.Regexp {
	return regexp.MustCompile(attr + `=["']?` + regexp.QuoteMeta(value) + `(?:["'\s>]|$)`)
}
