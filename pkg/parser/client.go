// Package parser provides a client for the external layout parser service.
// The service turns a raw document into an ordered list of raw elements with
// position metadata; this core never reads document formats itself.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"docquery-go/internal/config"
)

// RawElement is one unit of the parser's output. Pointer fields are optional:
// the normalizer drops elements that lack required position metadata.
type RawElement struct {
	Category      string          `json:"category"`
	Text          string          `json:"text"`
	Page          *int            `json:"page_number"`
	Coordinates   *RawCoordinates `json:"coordinates"`
	FontSize      *float64        `json:"font_size"`
	PayloadBase64 string          `json:"payload_base64,omitempty"`
}

// RawCoordinates is the polygon of an element on its page.
type RawCoordinates struct {
	Points [][2]float64 `json:"points"`
}

// Client talks to the parser server.
type Client struct {
	serverURL string
}

// NewClient creates a parser client from config.
func NewClient(cfg config.ParserConfig) *Client {
	return &Client{serverURL: cfg.ServerURL}
}

// Parse submits a document and returns the raw element list in the order the
// parser emitted it.
func (c *Client) Parse(fileReader io.Reader, fileName string) ([]RawElement, error) {
	contentType := detectMimeType(fileName)

	req, err := http.NewRequest("PUT", c.serverURL+"/elements", fileReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call parser: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("parser returned error [%d]: %s", resp.StatusCode, string(body))
	}

	var elements []RawElement
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("failed to decode parser response: %w", err)
	}

	return elements, nil
}

// detectMimeType derives the Content-Type from the file extension.
func detectMimeType(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return "application/octet-stream"
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}
