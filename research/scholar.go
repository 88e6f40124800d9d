package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wildwise/model"
)

const (
	DefaultScholarURL   = "https://api.semanticscholar.org/graph/v1"
	DefaultScholarLimit = 3

	maxBodySize = 1 << 20
)

// ScholarClient searches the Semantic Scholar graph API for papers.
type ScholarClient struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

type scholarResponse struct {
	Data *[]struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		URL      string `json:"url"`
	} `json:"data"`
}

// NewScholarClient creates a client. Empty baseURL and non-positive limit
// fall back to the defaults.
func NewScholarClient(baseURL string, limit int, httpClient *http.Client) *ScholarClient {
	if baseURL == "" {
		baseURL = DefaultScholarURL
	}
	if limit <= 0 {
		limit = DefaultScholarLimit
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ScholarClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		limit:      limit,
		httpClient: httpClient,
	}
}

// Search returns up to the configured number of papers for query. A reply
// without a data list yields an empty, non-nil result.
func (c *ScholarClient) Search(ctx context.Context, query string) ([]model.ResearchItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("fields", "title,abstract,url")

	var parsed scholarResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/paper/search?"+params.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("semantic scholar search failed: %w", err)
	}

	items := []model.ResearchItem{}
	if parsed.Data == nil {
		return items, nil
	}
	for _, paper := range *parsed.Data {
		items = append(items, model.ResearchItem{
			Title:    paper.Title,
			URL:      paper.URL,
			Abstract: paper.Abstract,
		})
	}
	return items, nil
}

// getJSON performs a GET and decodes a 200 reply into out
func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
