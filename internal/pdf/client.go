package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/hatzaot-app/quotes-api/internal/config"
)

// Client converts rendered HTML documents to PDF through a Gotenberg
// instance. Gotenberg runs headless Chromium, so RTL layout and web fonts
// come out the same as in the browser preview.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gotenberg client
func NewClient(cfg *config.PDFConfig) *Client {
	return &Client{
		baseURL: cfg.GotenbergURL,
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
	}
}

// RenderHTML converts an HTML document to a PDF, A4 with 20px margins to
// match the on-screen quote layout.
func (c *Client) RenderHTML(ctx context.Context, html []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(html); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	// Chromium page options. Gotenberg takes margins in inches.
	fields := map[string]string{
		"paperWidth":      "8.27",
		"paperHeight":     "11.7",
		"marginTop":       "0.21",
		"marginBottom":    "0.21",
		"marginLeft":      "0.21",
		"marginRight":     "0.21",
		"printBackground": "true",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := c.baseURL + "/forms/chromium/convert/html"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("render failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return io.ReadAll(resp.Body)
}
