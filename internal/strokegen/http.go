package strokegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tracescore/internal/domain/types"
	"github.com/okian/tracescore/pkg/logger"
)

// HTTPClient wraps http.Client with JSON helpers.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// Outcome is the server's answer for one sample.
type Outcome struct {
	Sample *Sample
	Scores types.ScoreResponse
	Err    error
}

// submit posts every sample to /v1/score with cfg.Workers goroutines.
// Outcomes are returned in sample order.
func submit(ctx context.Context, cfg *Config, samples []Sample, stats *Stats) []Outcome {
	log := logger.Get().Named("strokegen")
	log.Info(ctx, "submitting strokes",
		logger.Int("strokes", len(samples)),
		logger.Int("workers", cfg.Workers),
	)

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/v1/score"
	outcomes := make([]Outcome, len(samples))

	var submitted, failed atomic.Int64
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out := Outcome{Sample: &samples[i]}
				out.Scores, out.Err = scoreOne(ctx, client, url, &samples[i].Request)
				if out.Err != nil {
					failed.Add(1)
					log.Debug(ctx, "score request failed",
						logger.String("attempt_id", samples[i].Request.AttemptID),
						logger.Error(out.Err),
					)
				}
				submitted.Add(1)
				outcomes[i] = out
			}
		}()
	}

feed:
	for i := range samples {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Failed = int(failed.Load())
	stats.Succeeded = stats.Submitted - stats.Failed

	log.Info(ctx, "submission completed",
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
	)
	return outcomes[:stats.Submitted:stats.Submitted]
}

func scoreOne(ctx context.Context, client *HTTPClient, url string, req *types.ScoreRequest) (types.ScoreResponse, error) {
	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return types.ScoreResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.ScoreResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e types.ErrorResponse
		_ = json.Unmarshal(body, &e)
		return types.ScoreResponse{}, fmt.Errorf("status %d: %s: %s", resp.StatusCode, e.Code, e.Message)
	}

	var out types.ScoreResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return types.ScoreResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
