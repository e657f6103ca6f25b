// Package model defines the domain types shared across ingestion and retrieval.
package model

// ElementKind is the closed set of element variants produced by the normalizer.
type ElementKind string

const (
	ElementText   ElementKind = "text"
	ElementTable  ElementKind = "table"
	ElementFigure ElementKind = "figure"
)

// Region is the bounding box of an element on its page. Coordinates grow
// rightwards and downwards, matching the parser's page coordinate system.
type Region struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Element is one parsed unit of a document after normalization. Table and
// Figure elements carry their binary payload; Text elements carry text only.
type Element struct {
	Kind     ElementKind `json:"kind"`
	Category string      `json:"category"`
	Page     int         `json:"page"`
	Region   Region      `json:"region"`
	Text     string      `json:"text"`
	Payload  []byte      `json:"-"`
	FontSize float64     `json:"fontSize"`
	Index    int         `json:"index"`
}

// IsAsset reports whether the element is persisted as an asset instead of
// being inlined into chunk text.
func (e Element) IsAsset() bool {
	return e.Kind == ElementTable || e.Kind == ElementFigure
}
