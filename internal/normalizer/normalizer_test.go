package normalizer

import (
	"encoding/base64"
	"testing"

	"docquery-go/internal/model"
	"docquery-go/pkg/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func coords(points ...[2]float64) *parser.RawCoordinates {
	return &parser.RawCoordinates{Points: points}
}

func TestNormalizeMapsKinds(t *testing.T) {
	raw := []parser.RawElement{
		{
			Category:    "NarrativeText",
			Text:        "  Plain body text.  ",
			Page:        intPtr(1),
			Coordinates: coords([2]float64{10, 100}, [2]float64{500, 120}),
			FontSize:    floatPtr(10.5),
		},
		{
			Category:    "Table",
			Text:        "a | b",
			Page:        intPtr(1),
			Coordinates: coords([2]float64{10, 130}, [2]float64{500, 230}),
		},
		{
			Category:      "Image",
			Page:          intPtr(2),
			Coordinates:   coords([2]float64{10, 40}, [2]float64{300, 240}),
			PayloadBase64: base64.StdEncoding.EncodeToString([]byte{0x89, 0x50}),
		},
	}

	elements, dropped := Normalize(raw)

	require.Empty(t, dropped)
	require.Len(t, elements, 3)

	assert.Equal(t, model.ElementText, elements[0].Kind)
	assert.Equal(t, "narrativetext", elements[0].Category)
	assert.Equal(t, "Plain body text.", elements[0].Text)
	assert.Equal(t, 10.5, elements[0].FontSize)

	assert.Equal(t, model.ElementTable, elements[1].Kind)
	assert.Equal(t, []byte("a | b"), elements[1].Payload)

	assert.Equal(t, model.ElementFigure, elements[2].Kind)
	assert.Equal(t, []byte{0x89, 0x50}, elements[2].Payload)
}

func TestNormalizeDropsMalformedElements(t *testing.T) {
	raw := []parser.RawElement{
		{Category: "Text", Text: "no page", Coordinates: coords([2]float64{0, 0})},
		{Category: "Text", Text: "no coords", Page: intPtr(1)},
		{Category: "Table", Page: intPtr(1), Coordinates: coords([2]float64{0, 0})},
		{Category: "Figure", Page: intPtr(1), Coordinates: coords([2]float64{0, 0}), PayloadBase64: "!!!"},
		{Category: "Text", Text: "survivor", Page: intPtr(1), Coordinates: coords([2]float64{0, 0})},
	}

	elements, dropped := Normalize(raw)

	require.Len(t, elements, 1)
	assert.Equal(t, "survivor", elements[0].Text)

	require.Len(t, dropped, 4)
	for _, err := range dropped {
		var malformed *model.MalformedElementError
		require.ErrorAs(t, err, &malformed)
	}
}

func TestNormalizeSortsIntoReadingOrder(t *testing.T) {
	raw := []parser.RawElement{
		{Category: "Text", Text: "page2", Page: intPtr(2), Coordinates: coords([2]float64{10, 50})},
		{Category: "Text", Text: "page1-lower", Page: intPtr(1), Coordinates: coords([2]float64{10, 300})},
		{Category: "Text", Text: "page1-upper-right", Page: intPtr(1), Coordinates: coords([2]float64{200, 100})},
		{Category: "Text", Text: "page1-upper-left", Page: intPtr(1), Coordinates: coords([2]float64{10, 100})},
	}

	elements, dropped := Normalize(raw)

	require.Empty(t, dropped)
	require.Len(t, elements, 4)

	texts := make([]string, len(elements))
	for i, el := range elements {
		texts[i] = el.Text
		assert.Equal(t, i, el.Index)
	}
	assert.Equal(t, []string{"page1-upper-left", "page1-upper-right", "page1-lower", "page2"}, texts)
}

func TestNormalizeBoundingBoxFromPolygon(t *testing.T) {
	raw := []parser.RawElement{
		{
			Category: "Text",
			Text:     "poly",
			Page:     intPtr(1),
			Coordinates: coords(
				[2]float64{50, 200},
				[2]float64{300, 200},
				[2]float64{300, 100},
				[2]float64{50, 100},
			),
		},
	}

	elements, dropped := Normalize(raw)

	require.Empty(t, dropped)
	require.Len(t, elements, 1)
	assert.Equal(t, model.Region{X0: 50, Y0: 100, X1: 300, Y1: 200}, elements[0].Region)
}
