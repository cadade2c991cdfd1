package marketplace

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

const (
	testAgentID = "conference-travel-agent"
	testAPIKey  = "mk_test_key"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		agentID:    testAgentID,
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchJobs_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/agents/"+testAgentID+"/jobs", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"jobs": [
				{
					"id": "job-1",
					"offering": "conference-travel-planner",
					"params": {"conference": "ethdenver", "origin": "LHR"},
					"payment": {"rail": "evm", "tx_id": "0xabc123"}
				},
				{
					"id": "job-2",
					"offering": "conference-brief",
					"params": {"conference": "devcon"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	jobs, err := client.FetchJobs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "conference-travel-planner", jobs[0].Offering)
	assert.Equal(t, "ethdenver", jobs[0].Params["conference"])
	assert.Equal(t, "LHR", jobs[0].Params["origin"])
	require.NotNil(t, jobs[0].Payment)
	assert.Equal(t, "evm", jobs[0].Payment.Rail)
	assert.Equal(t, "0xabc123", jobs[0].Payment.TxID)
	assert.WithinDuration(t, time.Now(), jobs[0].ReceivedAt, time.Minute)

	assert.Equal(t, "job-2", jobs[1].ID)
	assert.Nil(t, jobs[1].Payment)
}

func TestClient_FetchJobs_EmptyQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobs": []}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	jobs, err := client.FetchJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestClient_FetchJobs_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.FetchJobs(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid API key")
}

func TestClient_Deliver_Success(t *testing.T) {
	result := domain.Result{
		JobID:    "job-1",
		Offering: "conference-travel-planner",
		Status:   domain.JobCompleted,
		Report:   "# EthDenver 2026 Travel Plan",
		Fields:   map[string]string{"total_cost_usd": "1840"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/jobs/job-1/result", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		var got domain.Result
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, result, got)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := testClient(server.URL)

	require.NoError(t, client.Deliver(context.Background(), result))
}

func TestClient_Deliver_FreshIdempotencyKeyPerCall(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL)
	result := domain.Result{JobID: "job-1", Offering: "conference-brief", Status: domain.JobCompleted}

	require.NoError(t, client.Deliver(context.Background(), result))
	require.NoError(t, client.Deliver(context.Background(), result))

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.NotEqual(t, keys[0], keys[1])
}

func TestClient_Deliver_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "result already submitted"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	err := client.Deliver(context.Background(), domain.Result{JobID: "job-1", Status: domain.JobCompleted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
}

func TestClient_RegisterOfferings(t *testing.T) {
	offerings := []domain.Offering{
		{
			Slug:         "conference-travel-planner",
			Title:        "Conference Travel Planner",
			Description:  "Full travel plan for a conference trip.",
			PriceUSD:     5,
			Keywords:     []string{"travel", "flights"},
			NeedsFlights: true,
		},
		{
			Slug:        "conference-brief",
			Title:       "Conference Brief",
			Description: "One-page summary of a conference.",
			PriceUSD:    2,
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/agents/"+testAgentID+"/offerings", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"slug":"conference-travel-planner"`)
		assert.Contains(t, string(body), `"price_usd":5`)
		// Internal routing flags stay out of the registration payload.
		assert.NotContains(t, string(body), "NeedsFlights")

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL)

	require.NoError(t, client.RegisterOfferings(context.Background(), offerings))
}

func TestClient_RegisterOfferings_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "missing title"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	err := client.RegisterOfferings(context.Background(), []domain.Offering{{Slug: "broken"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
