package bridge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(baseURL string) config.BridgeConfig {
	return config.BridgeConfig{
		BaseURL:          baseURL,
		Dataset:          "miamire",
		ServerToken:      "secret-token",
		RequestTimeoutMs: 1000,
		MaxRetries:       3,
	}
}

// recordSleeps returns a sleep func that records delays without waiting
func recordSleeps(delays *[]time.Duration) Option {
	return WithSleep(func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	})
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, Backoff(1))
	assert.Equal(t, 4*time.Second, Backoff(2))
	assert.Equal(t, 6*time.Second, Backoff(3))
	assert.Equal(t, 8*time.Second, Backoff(4))
	assert.Equal(t, 8*time.Second, Backoff(10))
	assert.Equal(t, 2*time.Second, Backoff(0))
}

func TestSearchProperties_Success(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{"ListingKey":"A1","ListPrice":500000,"City":"Miami"},{"ListingKey":"A2"}],"total":45}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger())
	params := models.SearchParams{
		City:     "Miami",
		Status:   []string{"Active", "Pending"},
		MinPrice: models.Float64Ptr(250000),
		Offset:   20,
		Limit:    20,
	}

	result, err := client.SearchProperties(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/miamire/listings", gotPath)
	assert.Equal(t, "Miami", gotQuery["city"][0])
	assert.Equal(t, "Active,Pending", gotQuery["status"][0])
	assert.Equal(t, "250000", gotQuery["min_price"][0])
	assert.Equal(t, "20", gotQuery["offset"][0])
	assert.Equal(t, "secret-token", gotQuery["access_token"][0])
	_, hasMax := gotQuery["max_price"]
	assert.False(t, hasMax, "unset numbers are omitted")

	require.Len(t, result.Properties, 2)
	assert.Equal(t, "A1", result.Properties[0].ListingID)
	assert.Equal(t, "miamire", *result.Properties[0].Source)
	assert.Equal(t, 45, result.TotalCount)
	assert.True(t, result.HasMore)
	require.NotNil(t, result.NextOffset)
	assert.Equal(t, 40, *result.NextOffset)
	assert.Equal(t, SourceBridge, client.Source())
}

func TestSearchProperties_TotalFallsBackToRecordCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[{"ListingKey":"A1"},{"ListingKey":"A2"},{"ListingKey":"A3"}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger())
	result, err := client.SearchProperties(context.Background(), models.SearchParams{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCount)
	assert.False(t, result.HasMore)
	assert.Nil(t, result.NextOffset)
}

func TestSearchProperties_MissingRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger())
	result, err := client.SearchProperties(context.Background(), models.SearchParams{})
	require.NoError(t, err)

	assert.NotNil(t, result.Properties)
	assert.Empty(t, result.Properties)
	assert.Equal(t, 0, result.TotalCount)
}

func TestSearchProperties_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"records":[{"ListingKey":"A1"}],"total":1}`))
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(testConfig(server.URL), testLogger(), recordSleeps(&delays))

	result, err := client.SearchProperties(context.Background(), models.SearchParams{})
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
	assert.Len(t, result.Properties, 1)
}

func TestSearchProperties_RateLimitExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(testConfig(server.URL), testLogger(), recordSleeps(&delays))

	_, err := client.SearchProperties(context.Background(), models.SearchParams{})
	require.Error(t, err)

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "MaxRetries=3 allows four requests")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}, delays)

	apiErr := AsAPIError(err)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "Too Many Requests", apiErr.Err)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestSearchProperties_NonRetryableStatus(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedErr     string
		expectedMessage string
	}{
		{name: "with body", status: http.StatusBadGateway, body: "gateway down", expectedErr: "Bad Gateway", expectedMessage: "gateway down"},
		{name: "empty body", status: http.StatusNotFound, expectedErr: "Not Found", expectedMessage: "Request failed with status 404"},
		{name: "unknown status", status: 599, expectedErr: "BridgeError", expectedMessage: "Request failed with status 599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL), testLogger())
			_, err := client.SearchProperties(context.Background(), models.SearchParams{})

			apiErr := AsAPIError(err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expectedErr, apiErr.Err)
			assert.Equal(t, tt.expectedMessage, apiErr.Message)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestSearchProperties_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RequestTimeoutMs = 50
	client := NewClient(cfg, testLogger())

	_, err := client.SearchProperties(context.Background(), models.SearchParams{})
	apiErr := AsAPIError(err)
	assert.Equal(t, http.StatusRequestTimeout, apiErr.StatusCode)
	assert.Equal(t, "Timeout", apiErr.Err)
	assert.Equal(t, "Request timed out", apiErr.Message)
}

func TestSearchProperties_NetworkErrorHidesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(testConfig(baseURL), testLogger())
	_, err := client.SearchProperties(context.Background(), models.SearchParams{})

	apiErr := AsAPIError(err)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "BridgeClientError", apiErr.Err)
	assert.NotContains(t, apiErr.Message, "secret-token")
}

func TestSearchProperties_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger())
	_, err := client.SearchProperties(context.Background(), models.SearchParams{})

	apiErr := AsAPIError(err)
	assert.Equal(t, "BridgeClientError", apiErr.Err)
}

func TestSearchProperties_MockMode(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.UseMock = true
	client := NewClient(cfg, testLogger())

	assert.Equal(t, SourceMock, client.Source())

	result, err := client.SearchProperties(context.Background(), models.SearchParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, result.Properties, 1)
	assert.Equal(t, "MOCK-1001", result.Properties[0].ListingID)
	assert.Equal(t, 1, result.TotalCount)
	assert.False(t, result.HasMore)
	assert.Nil(t, result.NextOffset)

	result, err = client.SearchProperties(context.Background(), models.SearchParams{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, result.Properties)
	assert.Equal(t, 1, result.TotalCount)
}

func TestMockSource_Pages(t *testing.T) {
	listings := []models.Property{{ListingID: "M1"}, {ListingID: "M2"}, {ListingID: "M3"}}
	source := NewMockSource(listings)

	page := source.Search(models.SearchParams{Limit: 2})
	require.Len(t, page.Properties, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, 2, *page.NextOffset)

	page = source.Search(models.SearchParams{Offset: 2, Limit: 2})
	require.Len(t, page.Properties, 1)
	assert.Equal(t, "M3", page.Properties[0].ListingID)
	assert.False(t, page.HasMore)
}

func TestAsAPIError_Default(t *testing.T) {
	apiErr := AsAPIError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "BridgeError", apiErr.Err)
}
