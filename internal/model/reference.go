package model

// SourceKind identifies the HTML construct a Reference was extracted from.
type SourceKind string

const (
	// SourceAnchor is the href of an <a> element.
	SourceAnchor SourceKind = "anchor"

	// SourceImage is the src of an <img> element.
	SourceImage SourceKind = "image"

	// SourceLink is the href of a <link> element (stylesheet, preload, icon).
	SourceLink SourceKind = "link"

	// SourceScript is the src of a <script> element.
	SourceScript SourceKind = "script"
)

// Category is the semantic class of a reference URL.
type Category string

const (
	// CategoryEmpty is an attribute that is present but has no value.
	CategoryEmpty Category = "empty"

	// CategoryAnchor is a fragment reference within the same document ("#top").
	CategoryAnchor Category = "anchor"

	// CategoryData is an inline data: URI.
	CategoryData Category = "data"

	// CategoryMailto is a mailto: link.
	CategoryMailto Category = "mailto"

	// CategoryTel is a tel: link.
	CategoryTel Category = "tel"

	// CategoryJavaScript is a javascript: pseudo URL.
	CategoryJavaScript Category = "javascript"

	// CategoryExternal is an http, https or protocol-relative URL.
	CategoryExternal Category = "external"

	// CategoryInternal is a path resolved relative to the document.
	CategoryInternal Category = "internal"
)

// Reference is a single URL extracted from a document.
// It is immutable once the classifier has assigned its Category.
type Reference struct {
	// URL is the attribute value exactly as written in the document.
	URL string `json:"url"`

	// Kind is the element the URL was found on.
	Kind SourceKind `json:"kind"`

	// Category is assigned by the classifier. Empty until classified.
	Category Category `json:"category,omitempty"`

	// Rel is the rel attribute of a <link> element, if any.
	Rel string `json:"rel,omitempty"`
}

// Classified returns a copy of the reference carrying the given category.
func (r Reference) Classified(c Category) Reference {
	r.Category = c
	return r
}
