package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"goproductsync_api/internal/catalog/dto/request"
	"goproductsync_api/internal/catalog/dto/response"
	"goproductsync_api/pkg/logger"
)

const (
	requestTimeout   = 60 * time.Second
	requestRateLimit = 70 // requests per minute
)

// HTTPClient — реализация Client поверх HTTP-API каталога.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	auth    AuthEngine
	log     logger.Logger
}

func NewHTTPClient(baseURL string, auth AuthEngine, writer io.Writer) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/requestRateLimit), requestRateLimit),
		auth:    auth,
		log:     logger.NewLogger(writer, "[CatalogClient]"),
	}
}

func (c *HTTPClient) LookupProductIDs(ctx context.Context, skus []string) (map[string]int64, error) {
	if len(skus) == 0 {
		return map[string]int64{}, nil
	}

	var result response.SKULookup
	url := c.baseURL + "/products/lookup"
	if err := c.doJSON(ctx, http.MethodPost, url, request.SKULookup{SKUs: skus}, &result); err != nil {
		return nil, fmt.Errorf("sku lookup failed: %w", err)
	}
	if result.Found == nil {
		return map[string]int64{}, nil
	}
	return result.Found, nil
}

func (c *HTTPClient) BatchProducts(ctx context.Context, batch request.ProductBatch) (*response.ProductBatch, error) {
	var result response.ProductBatch
	url := c.baseURL + "/products/batch"
	if err := c.doJSON(ctx, http.MethodPost, url, batch, &result); err != nil {
		return nil, fmt.Errorf("product batch failed: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) LookupVariationIDs(ctx context.Context, productID int64) (map[string]int64, error) {
	var result response.SKULookup
	url := fmt.Sprintf("%s/products/%d/variations/lookup", c.baseURL, productID)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &result); err != nil {
		return nil, fmt.Errorf("variation lookup failed: %w", err)
	}
	if result.Found == nil {
		return map[string]int64{}, nil
	}
	return result.Found, nil
}

func (c *HTTPClient) BatchVariations(ctx context.Context, productID int64, batch request.VariationBatch) (*response.ProductBatch, error) {
	var result response.ProductBatch
	url := fmt.Sprintf("%s/products/%d/variations/batch", c.baseURL, productID)
	if err := c.doJSON(ctx, http.MethodPost, url, batch, &result); err != nil {
		return nil, fmt.Errorf("variation batch failed: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) AssignTerms(ctx context.Context, productID int64, terms request.TermsAssignment) error {
	url := fmt.Sprintf("%s/products/%d/terms", c.baseURL, productID)
	if err := c.doJSON(ctx, http.MethodPut, url, terms, nil); err != nil {
		return fmt.Errorf("terms assignment failed: %w", err)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		requestBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth != nil {
		c.auth.SetApiKey(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResponse map[string]interface{}
		if err := json.Unmarshal(bodyBytes, &errorResponse); err == nil {
			errorDetails, _ := json.MarshalIndent(errorResponse, "", "  ")
			c.log.Log("Catalog call failed with status: %d, error details: %s", resp.StatusCode, string(errorDetails))
		}
		return fmt.Errorf("catalog call failed with status: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
