// Package classifier maps raw reference URLs to their semantic category.
package classifier

import (
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// rule is one prefix test of the decision list.
type rule struct {
	prefixes []string
	category model.Category
}

// rules is evaluated top to bottom and the first match wins.
// The order matters: "#x" or "mailto:x" must never fall through to the
// internal/external tests below them.
var rules = []rule{
	{prefixes: []string{"#"}, category: model.CategoryAnchor},
	{prefixes: []string{"data:"}, category: model.CategoryData},
	{prefixes: []string{"mailto:"}, category: model.CategoryMailto},
	{prefixes: []string{"tel:"}, category: model.CategoryTel},
	{prefixes: []string{"javascript:"}, category: model.CategoryJavaScript},
	{prefixes: []string{"http://", "https://", "//"}, category: model.CategoryExternal},
}

// Classify returns the category of a reference URL.
// The function is total: every string, including the empty one, maps to
// exactly one category. Prefix tests are case-sensitive.
func Classify(url string) model.Category {
	if url == "" {
		return model.CategoryEmpty
	}
	for _, r := range rules {
		for _, p := range r.prefixes {
			if strings.HasPrefix(url, p) {
				return r.category
			}
		}
	}
	return model.CategoryInternal
}
