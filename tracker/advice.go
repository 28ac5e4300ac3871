package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AdviceProvider is an optional external advice source consulted before the
// local forecast heuristic. An empty string means "no answer, fall back".
type AdviceProvider interface {
	Advice(ctx context.Context, itemURL string) (string, error)
}

// HTTPAdviceProvider queries an external price-history service expecting
// GET {base}?url={item} to answer {"advice": "..."}. An empty advice field
// or a non-200 status falls back to the local heuristic.
type HTTPAdviceProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPAdviceProvider(baseURL string) *HTTPAdviceProvider {
	return &HTTPAdviceProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

func (p *HTTPAdviceProvider) Advice(ctx context.Context, itemURL string) (string, error) {
	reqURL := p.baseURL + "?url=" + url.QueryEscape(itemURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advice service returned status %d", resp.StatusCode)
	}

	var body struct {
		Advice string `json:"advice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode advice response: %w", err)
	}
	return body.Advice, nil
}
