package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/playwithllm/console/pkg/models"
)

// SearchProducts searches the product catalog by keyword. An empty keyword
// returns the unfiltered listing.
func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	path := "/api/v1/products/search"
	if keyword != "" {
		path += "?keyword=" + url.QueryEscape(keyword)
	}
	var products []models.Product
	if err := c.getJSON(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SearchProductsByImage searches the catalog by uploaded image. The image is
// sent as a multipart form field named "image".
func (c *Client) SearchProductsByImage(ctx context.Context, filename string, image io.Reader) ([]models.Product, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/products/search/image", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var products []models.Product
	if err := c.doJSON(req, &products); err != nil {
		return nil, err
	}
	return products, nil
}
