package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/registry"
)

// semanticConfidenceCap keeps AI-produced locators below deterministic
// ones by convention.
const semanticConfidenceCap = 0.59

// MatcherClient talks to the external semantic matching service.
type MatcherClient struct {
	http    *http.Client
	baseURL string
}

// NewMatcherClient creates a client for the matcher service.
func NewMatcherClient(baseURL string, timeout time.Duration) *MatcherClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MatcherClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// matchRequest is the wire format sent to the matcher.
type matchRequest struct {
	SemanticID  string `json:"semanticId"`
	Description string `json:"description"`
	PageKey     string `json:"pageKey"`
}

// matchResponse is the wire format returned by the matcher.
type matchResponse struct {
	Selector   string  `json:"selector"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
}

// Match asks the service for a selector matching the description.
// found=false means the service had no suggestion.
func (c *MatcherClient) Match(ctx context.Context, req matchRequest) (matchResponse, bool, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return matchResponse{}, false, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match", bytes.NewReader(body))
	if err != nil {
		return matchResponse{}, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return matchResponse{}, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return matchResponse{}, false, nil
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return matchResponse{}, false, fmt.Errorf("matcher returned %d: %s", resp.StatusCode, data)
	}

	var mr matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return matchResponse{}, false, err
	}
	if mr.Selector == "" {
		return matchResponse{}, false, nil
	}
	return mr, true, nil
}

// Semantic delegates resolution to an external matching capability,
// given the semantic id's human-readable description. Most expensive
// strategy; the chain time-boxes every attempt and treats a timeout as
// "no match", so transient matcher latency never aborts a resolve.
type Semantic struct {
	reg    *registry.Registry
	client *MatcherClient
}

// NewSemantic creates the semantic strategy.
func NewSemantic(reg *registry.Registry, client *MatcherClient) *Semantic {
	return &Semantic{reg: reg, client: client}
}

// Name implements Strategy.
func (s *Semantic) Name() string { return NameSemantic }

// Attempt implements Strategy.
func (s *Semantic) Attempt(ctx context.Context, page core.PageContext, id core.SemanticID) (core.Locator, bool, error) {
	entry, _ := s.reg.Lookup(id)
	description := entry.Description
	if description == "" {
		// The id itself is human-readable enough to try.
		description = string(id)
	}

	resp, found, err := s.client.Match(ctx, matchRequest{
		SemanticID:  string(id),
		Description: description,
		PageKey:     page.Key(),
	})
	if err != nil {
		// The chain classifies deadline errors as a timed-out attempt
		// and everything else as an infrastructure fault.
		return core.Locator{}, false, err
	}
	if !found {
		return core.Locator{}, false, nil
	}

	kind := core.Kind(resp.Kind)
	if !kind.Valid() {
		kind = core.KindHeuristic
	}
	confidence := resp.Confidence
	if confidence <= 0 || confidence > semanticConfidenceCap {
		confidence = semanticConfidenceCap
	}
	return core.Locator{Kind: kind, Value: resp.Selector, Confidence: confidence}, true, nil
}
