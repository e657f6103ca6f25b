// Package normalizer converts the parser's raw output into a uniform typed
// element stream. Downstream components never branch on untyped data.
package normalizer

import (
	"encoding/base64"
	"sort"
	"strings"

	"docquery-go/internal/model"
	"docquery-go/pkg/log"
	"docquery-go/pkg/parser"
)

// assetCategories are parser categories persisted as assets.
var figureCategories = map[string]bool{
	"image":  true,
	"figure": true,
}

// Normalize maps raw parser elements onto the closed {Text, Table, Figure}
// variant set in document reading order. Elements lacking required position
// metadata are dropped and reported as MalformedElementError values; the
// caller logs them and continues with the rest of the document. The transform
// is pure apart from warning logs.
func Normalize(raw []parser.RawElement) ([]model.Element, []error) {
	elements := make([]model.Element, 0, len(raw))
	var dropped []error

	for i, re := range raw {
		el, err := normalizeOne(i, re)
		if err != nil {
			log.Warnf("[Normalizer] dropping element %d: %v", i, err)
			dropped = append(dropped, err)
			continue
		}
		elements = append(elements, el)
	}

	// Reading order: page first, then top-to-bottom, then left-to-right.
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Region.Y0 != b.Region.Y0 {
			return a.Region.Y0 < b.Region.Y0
		}
		return a.Region.X0 < b.Region.X0
	})
	for i := range elements {
		elements[i].Index = i
	}

	return elements, dropped
}

func normalizeOne(index int, re parser.RawElement) (model.Element, error) {
	if re.Page == nil {
		return model.Element{}, &model.MalformedElementError{Index: index, Reason: "missing page number"}
	}
	region, ok := regionOf(re.Coordinates)
	if !ok {
		return model.Element{}, &model.MalformedElementError{Index: index, Reason: "missing bounding region"}
	}

	category := strings.ToLower(strings.TrimSpace(re.Category))
	el := model.Element{
		Category: category,
		Page:     *re.Page,
		Region:   region,
		Text:     strings.TrimSpace(re.Text),
	}
	if re.FontSize != nil {
		el.FontSize = *re.FontSize
	}

	switch {
	case category == "table":
		if el.Text == "" {
			return model.Element{}, &model.MalformedElementError{Index: index, Reason: "table element without content"}
		}
		el.Kind = model.ElementTable
		el.Payload = []byte(el.Text)
	case figureCategories[category]:
		payload, err := base64.StdEncoding.DecodeString(re.PayloadBase64)
		if err != nil || len(payload) == 0 {
			return model.Element{}, &model.MalformedElementError{Index: index, Reason: "figure element without payload"}
		}
		el.Kind = model.ElementFigure
		el.Payload = payload
	default:
		el.Kind = model.ElementText
	}

	return el, nil
}

// regionOf collapses a coordinate polygon into a bounding box.
func regionOf(coords *parser.RawCoordinates) (model.Region, bool) {
	if coords == nil || len(coords.Points) == 0 {
		return model.Region{}, false
	}
	r := model.Region{
		X0: coords.Points[0][0], Y0: coords.Points[0][1],
		X1: coords.Points[0][0], Y1: coords.Points[0][1],
	}
	for _, p := range coords.Points[1:] {
		if p[0] < r.X0 {
			r.X0 = p[0]
		}
		if p[0] > r.X1 {
			r.X1 = p[0]
		}
		if p[1] < r.Y0 {
			r.Y0 = p[1]
		}
		if p[1] > r.Y1 {
			r.Y1 = p[1]
		}
	}
	return r, true
}
