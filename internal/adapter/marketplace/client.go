// Package marketplace implements the agent-side client of the job
// marketplace REST API: polling for assigned jobs, delivering results, and
// keeping the offering listing current.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/conference-travel-agent/internal/adapter/httpclient"
	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

// Client talks to the marketplace on behalf of one registered agent.
type Client struct {
	baseURL    string
	agentID    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a marketplace client for the given agent.
func NewClient(baseURL, agentID, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		agentID:    agentID,
		apiKey:     apiKey,
		httpClient: httpclient.New(timeout, httpclient.DefaultRetryPolicy(), logger),
		logger:     logger,
	}
}

// FetchJobs returns up to limit jobs assigned to this agent. An empty queue
// is an empty slice, not an error.
func (c *Client) FetchJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	u := fmt.Sprintf("%s/v1/agents/%s/jobs?limit=%s", c.baseURL, c.agentID, strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("marketplace API error: status %d: %s", resp.StatusCode, body)
	}

	var jobsResp jobsResponse
	if err := json.NewDecoder(resp.Body).Decode(&jobsResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	now := time.Now()
	jobs := make([]domain.Job, 0, len(jobsResp.Jobs))
	for _, j := range jobsResp.Jobs {
		job := domain.Job{
			ID:         j.ID,
			Offering:   j.Offering,
			Params:     j.Params,
			ReceivedAt: now,
		}
		if j.Payment != nil {
			job.Payment = &domain.PaymentClaim{Rail: j.Payment.Rail, TxID: j.Payment.TxID}
		}
		jobs = append(jobs, job)
	}

	c.logger.Debug("jobs fetched", "count", len(jobs))
	return jobs, nil
}

// Deliver posts a finished result for its job. The Idempotency-Key header is
// fixed per call, so transport-level retries cannot double-deliver.
func (c *Client) Deliver(ctx context.Context, result domain.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	u := fmt.Sprintf("%s/v1/jobs/%s/result", c.baseURL, result.JobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("marketplace API error: status %d: %s", resp.StatusCode, body)
	}

	c.logger.Debug("result delivered", "job_id", result.JobID, "status", result.Status)
	return nil
}

// RegisterOfferings replaces the agent's marketplace listing with the given
// offerings.
func (c *Client) RegisterOfferings(ctx context.Context, offerings []domain.Offering) error {
	payload, err := json.Marshal(registerRequest{Offerings: offerings})
	if err != nil {
		return fmt.Errorf("marshal offerings: %w", err)
	}

	u := fmt.Sprintf("%s/v1/agents/%s/offerings", c.baseURL, c.agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("register offerings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("marketplace API error: status %d: %s", resp.StatusCode, body)
	}

	c.logger.Info("offerings registered", "count", len(offerings))
	return nil
}

// Marketplace API request and response types.

type jobsResponse struct {
	Jobs []jobPayload `json:"jobs"`
}

type jobPayload struct {
	ID       string            `json:"id"`
	Offering string            `json:"offering"`
	Params   map[string]string `json:"params"`
	Payment  *paymentPayload   `json:"payment"`
}

type paymentPayload struct {
	Rail string `json:"rail"`
	TxID string `json:"tx_id"`
}

type registerRequest struct {
	Offerings []domain.Offering `json:"offerings"`
}
