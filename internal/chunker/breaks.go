package chunker

import (
	"docquery-go/internal/config"
	"docquery-go/internal/model"
)

// BreakPredicate decides whether a structural break separates two consecutive
// text elements. It is injectable so the heading heuristic can be swapped
// without touching the merge algorithm.
type BreakPredicate func(prev, next model.Element) bool

// titleCategories are parser categories treated as headings.
var titleCategories = map[string]bool{
	"title":    true,
	"subtitle": true,
	"header":   true,
}

// LayoutBreaks is the default break heuristic: a heading-level element, a
// font-size jump, or a large vertical gap on the same page. A bare page
// boundary is not a break on its own, so a text run may flow across pages.
type LayoutBreaks struct {
	YGapThreshold float64
	FontJumpPt    float64
	FontJumpRatio float64
}

// NewLayoutBreaks builds the default predicate from config, applying
// defaults for unset values.
func NewLayoutBreaks(cfg config.ChunkingConfig) LayoutBreaks {
	lb := LayoutBreaks{
		YGapThreshold: cfg.YGapThreshold,
		FontJumpPt:    cfg.FontJumpPt,
		FontJumpRatio: cfg.FontJumpRatio,
	}
	if lb.YGapThreshold <= 0 {
		lb.YGapThreshold = 30.0
	}
	if lb.FontJumpPt <= 0 {
		lb.FontJumpPt = 2.0
	}
	if lb.FontJumpRatio <= 0 {
		lb.FontJumpRatio = 1.2
	}
	return lb
}

// Break implements BreakPredicate.
func (lb LayoutBreaks) Break(prev, next model.Element) bool {
	if titleCategories[next.Category] {
		return true
	}
	if prev.FontSize > 0 && next.FontSize > 0 {
		if next.FontSize-prev.FontSize >= lb.FontJumpPt {
			return true
		}
		if next.FontSize/prev.FontSize >= lb.FontJumpRatio {
			return true
		}
	}
	if next.Page == prev.Page && next.Region.Y0-prev.Region.Y1 > lb.YGapThreshold {
		return true
	}
	return false
}
