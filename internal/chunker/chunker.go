// Package chunker merges a document's normalized text elements into bounded,
// layout-respecting retrieval units.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"docquery-go/internal/config"
	"docquery-go/internal/model"
)

const defaultMaxChars = 1600

// Builder builds chunks for one document at a time. It is a pure transform:
// identical element input always yields identical chunks, including IDs.
type Builder struct {
	maxChars int
	breakAt  BreakPredicate
}

// New creates a Builder from config with the default layout break predicate.
func New(cfg config.ChunkingConfig) *Builder {
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Builder{
		maxChars: maxChars,
		breakAt:  NewLayoutBreaks(cfg).Break,
	}
}

// NewWithPredicate creates a Builder with a custom break predicate.
func NewWithPredicate(maxChars int, breakAt BreakPredicate) *Builder {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Builder{maxChars: maxChars, breakAt: breakAt}
}

// candidate is the chunk being accumulated during the walk.
type candidate struct {
	parts     []string
	length    int
	pageStart int
	pageEnd   int
	assetIDs  []string
	prev      model.Element
	open      bool
}

// Build walks the elements in reading order and produces the document's
// chunks. assetIDs maps element index to the stored asset ID for Table and
// Figure elements; an asset is linked to the chunk whose span encloses its
// position, never inlined into chunk text.
//
// A boundary is forced by a structural break, by a Table/Figure element, or
// by the size limit, in that priority order: a structural break always closes
// the current chunk even when it is under the size threshold. A single text
// element larger than the limit becomes its own oversized chunk; splitting
// mid-sentence is considered worse than an oversized chunk.
func (b *Builder) Build(docID string, meta model.DocumentMeta, elements []model.Element, assetIDs map[int]string) []model.Chunk {
	var chunks []model.Chunk
	var cur candidate
	var pendingAssets []string

	closeCur := func() {
		if !cur.open {
			return
		}
		chunks = append(chunks, model.Chunk{
			ID:         ChunkID(docID, cur.parts),
			DocumentID: docID,
			Content:    strings.Join(cur.parts, " "),
			PageStart:  cur.pageStart,
			PageEnd:    cur.pageEnd,
			AssetIDs:   cur.assetIDs,
			Meta:       meta,
		})
		cur = candidate{}
	}

	for _, el := range elements {
		if el.IsAsset() {
			id := assetIDs[el.Index]
			if cur.open && el.Page <= cur.pageEnd {
				// The open span reaches the asset's page: the asset belongs
				// to this chunk, and the non-text element closes it.
				if id != "" {
					cur.assetIDs = append(cur.assetIDs, id)
				}
				closeCur()
			} else {
				closeCur()
				if id != "" {
					pendingAssets = append(pendingAssets, id)
				}
			}
			continue
		}

		if el.Text == "" {
			continue
		}

		if cur.open && b.breakAt(cur.prev, el) {
			closeCur()
		}

		length := utf8.RuneCountInString(el.Text)
		if cur.open && cur.length+1+length > b.maxChars {
			closeCur()
		}

		if !cur.open {
			cur = candidate{
				pageStart: el.Page,
				pageEnd:   el.Page,
				assetIDs:  pendingAssets,
				open:      true,
			}
			pendingAssets = nil
		}
		cur.parts = append(cur.parts, el.Text)
		if cur.length > 0 {
			cur.length++
		}
		cur.length += length
		if el.Page > cur.pageEnd {
			cur.pageEnd = el.Page
		}
		cur.prev = el
	}

	closeCur()

	// Assets after the last text element have no following chunk; link them
	// to the nearest preceding one.
	if len(pendingAssets) > 0 && len(chunks) > 0 {
		last := &chunks[len(chunks)-1]
		last.AssetIDs = append(last.AssetIDs, pendingAssets...)
	}

	return chunks
}

// ChunkID derives the chunk identifier from the document ID and the ordered
// span content. It is a pure function, so repeated ingestion of unchanged
// input yields byte-identical IDs and no duplicate vector entries.
func ChunkID(docID string, parts []string) string {
	h := sha256.New()
	h.Write([]byte(docID))
	for _, p := range parts {
		h.Write([]byte{0x1f})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
