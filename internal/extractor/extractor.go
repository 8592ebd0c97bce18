package extractor

import (
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// source describes which attribute of which element produces a reference.
type source struct {
	attr string
	kind model.SourceKind
}

var sources = map[string]source{
	"a":      {attr: "href", kind: model.SourceAnchor},
	"img":    {attr: "src", kind: model.SourceImage},
	"link":   {attr: "href", kind: model.SourceLink},
	"script": {attr: "src", kind: model.SourceScript},
}

// resourceHints are <link rel> values that name a host, not a fetchable
// resource.
var resourceHints = map[string]struct{}{
	"preconnect":   {},
	"dns-prefetch": {},
}

// Extract returns every reference in content, in document order.
// Duplicates are kept; deduplication happens during aggregation.
// The returned references are not yet classified.
func Extract(content string) []model.Reference {
	refs := make([]model.Reference, 0)
	for ev := range TagEvents(content) {
		if ref, ok := referenceFrom(ev); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func referenceFrom(ev TagEvent) (model.Reference, bool) {
	src, ok := sources[ev.Name]
	if !ok {
		return model.Reference{}, false
	}
	url, ok := ev.Attr(src.attr)
	if !ok {
		return model.Reference{}, false
	}

	ref := model.Reference{URL: url, Kind: src.kind}
	if src.kind == model.SourceLink {
		rel, _ := ev.Attr("rel")
		if isResourceHint(rel) {
			return model.Reference{}, false
		}
		ref.Rel = rel
	}
	return ref, true
}

// isResourceHint compares the whole rel value, so "preconnect stylesheet"
// is still extracted.
func isResourceHint(rel string) bool {
	_, ok := resourceHints[strings.ToLower(strings.TrimSpace(rel))]
	return ok
}
