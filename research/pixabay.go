package research

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultPixabayURL = "https://pixabay.com/api/"

	// DefaultFallbackImage is shown when a relevant query has no matching photo
	DefaultFallbackImage = "https://cdn.pixabay.com/photo/2017/06/06/22/08/bird-2376974_1280.jpg"

	// Pixabay rejects longer search terms
	maxPixabayQuery = 100
)

// ErrNoAPIKey is returned when an image search is attempted without a key
var ErrNoAPIKey = errors.New("pixabay API key not configured")

// PixabayClient searches Pixabay for photos.
type PixabayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type pixabayResponse struct {
	Hits []struct {
		WebformatURL string `json:"webformatURL"`
	} `json:"hits"`
}

// NewPixabayClient creates a client; an empty baseURL uses DefaultPixabayURL
func NewPixabayClient(baseURL, apiKey string, httpClient *http.Client) *PixabayClient {
	if baseURL == "" {
		baseURL = DefaultPixabayURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PixabayClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// FirstImage returns the first photo URL matching query, or "" when there are no hits
func (c *PixabayClient) FirstImage(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	q := strings.TrimSpace(query)
	if len(q) > maxPixabayQuery {
		q = q[:maxPixabayQuery]
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", q)
	params.Set("image_type", "photo")
	params.Set("per_page", "3")

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}

	var parsed pixabayResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+sep+params.Encode(), &parsed); err != nil {
		return "", fmt.Errorf("pixabay search failed: %w", err)
	}

	for _, hit := range parsed.Hits {
		if hit.WebformatURL != "" {
			return hit.WebformatURL, nil
		}
	}
	return "", nil
}
