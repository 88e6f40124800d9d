package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"wildwise/model"
)

const (
	// DefaultWildwiseURL is the local development address of the answering service
	DefaultWildwiseURL = "http://localhost:5000"

	chatPath        = "/api/chat"
	maxResponseSize = 4 << 20
)

var (
	// ErrStatus is matched by every *StatusError
	ErrStatus = errors.New("non-success status")

	// ErrMalformedResponse means the body was not an object with a string answer
	ErrMalformedResponse = errors.New("malformed answer response")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("answering service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("answering service returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// WildwiseAnswerer talks to a WildWise answering service over HTTP.
type WildwiseAnswerer struct {
	baseURL    string
	httpClient *http.Client
}

// wireResponse mirrors the service reply. Answer is a pointer so a missing
// answer can be told apart from an empty one.
type wireResponse struct {
	Answer   *string              `json:"answer"`
	Research []model.ResearchItem `json:"research"`
	ImageURL string               `json:"image_url"`
}

// NewWildwiseAnswerer creates an answerer for the service at baseURL
// (DefaultWildwiseURL when empty). A nil httpClient uses http.DefaultClient.
//
// Example:
//
//	a, err := NewWildwiseAnswerer("http://localhost:5000", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewWildwiseAnswerer(baseURL string, httpClient *http.Client) (*WildwiseAnswerer, error) {
	if baseURL == "" {
		baseURL = DefaultWildwiseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid answering service URL %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &WildwiseAnswerer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Answer implements model.Answerer.
//
// The request body is {"query": ..., "chatHistory": [...]}. Any transport
// error, non-2xx status or malformed body is returned as an error; no retry
// is attempted.
func (a *WildwiseAnswerer) Answer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	if req.ChatHistory == nil {
		req.ChatHistory = []model.Message{}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+chatPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 200)}
	}

	return decodeAnswer(body)
}

// decodeAnswer parses a service reply, preserving the null/empty distinction
// of the research list.
func decodeAnswer(body []byte) (*model.AnswerResponse, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.Answer == nil {
		return nil, fmt.Errorf("%w: missing answer", ErrMalformedResponse)
	}

	return &model.AnswerResponse{
		Answer:   *wire.Answer,
		Research: wire.Research,
		ImageURL: wire.ImageURL,
	}, nil
}

// Name implements model.Answerer.
func (a *WildwiseAnswerer) Name() string {
	return string(BackendWildwise)
}

// Ping implements Pinger with a HEAD request against the service root.
// Any HTTP response counts as reachable.
func (a *WildwiseAnswerer) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("answering service unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
