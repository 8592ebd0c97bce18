package extractor

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// TagEvent is a start or self-closing tag seen by the tokenizer.
type TagEvent struct {
	// Name is the lower-cased element name.
	Name string

	// Attrs maps lower-cased attribute names to their unescaped values.
	// The first occurrence of a repeated attribute wins.
	Attrs map[string]string
}

// Attr returns the value of an attribute and whether it was present.
// A present attribute with no value reports ("", true).
func (e TagEvent) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// TagEvents returns a lazy sequence of the tag events in content.
// Each call to the returned sequence starts a fresh tokenizer, so the
// sequence can be ranged over more than once.
func TagEvents(content string) iter.Seq[TagEvent] {
	return func(yield func(TagEvent) bool) {
		z := html.NewTokenizer(strings.NewReader(content))
		for {
			switch z.Next() {
			case html.ErrorToken:
				// io.EOF or a read error; either way the stream is over.
				return
			case html.StartTagToken, html.SelfClosingTagToken:
				if !yield(newTagEvent(z)) {
					return
				}
			default:
			}
		}
	}
}

func newTagEvent(z *html.Tokenizer) TagEvent {
	name, hasAttr := z.TagName()
	ev := TagEvent{
		Name:  string(name),
		Attrs: make(map[string]string),
	}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		k := string(key)
		if _, dup := ev.Attrs[k]; dup {
			continue
		}
		ev.Attrs[k] = string(val)
	}
	return ev
}
