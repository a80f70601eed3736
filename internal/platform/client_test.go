package platform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchHourlyWindow_MockMode tests the canned window served without a
// configured metrics endpoint
func TestFetchHourlyWindow_MockMode(t *testing.T) {
	client := NewClient(ClientConfig{}, zerolog.Nop())

	window, err := client.FetchHourlyWindow(context.Background())

	require.NoError(t, err)
	require.NotNil(t, window)
	assert.Equal(t, 35.0, window.Margin)
	assert.Equal(t, 55000.0, window.Impressions)
	assert.Equal(t, 25.0, window.Revenue)
	assert.Equal(t, 16.0, window.Cost)
	assert.Equal(t, 1.5, window.BidRate)
	assert.Equal(t, 28000.0, window.Responses)
}

// TestFetchHourlyWindow_Success tests fetching and decoding a real response
func TestFetchHourlyWindow_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"margin": 36,
			"impressions": 48000,
			"revenue": 22.5,
			"cost": 14.0,
			"bid_rate": 1.4,
			"responses": 26000
		}`)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		MetricsURL: server.URL,
		APIKey:     "test-key",
	}, zerolog.Nop())

	window, err := client.FetchHourlyWindow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, 36.0, window.Margin)
	assert.Equal(t, 48000.0, window.Impressions)
	assert.Equal(t, 22.5, window.Revenue)
	assert.Equal(t, 1.4, window.BidRate)
}

// TestFetchHourlyWindow_MissingFieldsAreZero tests that omitted counters
// default to zero
func TestFetchHourlyWindow_MissingFieldsAreZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"revenue": 5.0, "margin": 35}`)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{MetricsURL: server.URL}, zerolog.Nop())

	window, err := client.FetchHourlyWindow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5.0, window.Revenue)
	assert.Equal(t, 0.0, window.Impressions)
	assert.Equal(t, 0.0, window.Cost)
	assert.Equal(t, 0.0, window.Responses)
}

// TestFetchHourlyWindow_NonNumericField tests that non-numeric values are
// surfaced as decode errors rather than coerced
func TestFetchHourlyWindow_NonNumericField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"impressions": "lots", "revenue": 5.0}`)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{MetricsURL: server.URL}, zerolog.Nop())

	window, err := client.FetchHourlyWindow(context.Background())

	assert.Error(t, err)
	assert.Nil(t, window)
	assert.Contains(t, err.Error(), "decode")
}

// TestFetchHourlyWindow_ServerError tests a non-200 reporting response
func TestFetchHourlyWindow_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{MetricsURL: server.URL}, zerolog.Nop())

	window, err := client.FetchHourlyWindow(context.Background())

	assert.Error(t, err)
	assert.Nil(t, window)
	assert.Contains(t, err.Error(), "status 502")
}

// TestFetchHourlyWindow_ContextCanceled tests fetch with a canceled context
func TestFetchHourlyWindow_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{MetricsURL: server.URL}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchHourlyWindow(ctx)

	assert.Error(t, err)
}

// TestApplyMargin_MockMode tests the no-op path without a configured endpoint
func TestApplyMargin_MockMode(t *testing.T) {
	client := NewClient(ClientConfig{}, zerolog.Nop())

	err := client.ApplyMargin(context.Background(), 36.5)

	assert.NoError(t, err)
}

// TestApplyMargin_Success tests the margin update request shape
func TestApplyMargin_Success(t *testing.T) {
	var gotMethod, gotContentType, gotAuth string
	var gotBody map[string]float64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		UpdateURL: server.URL,
		APIKey:    "test-key",
	}, zerolog.Nop())

	err := client.ApplyMargin(context.Background(), 36.5)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, 36.5, gotBody["margin"])
}

// TestApplyMargin_NoAuthHeaderWithoutKey tests that no bearer token is sent
// when the key is unset
func TestApplyMargin_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	client := NewClient(ClientConfig{UpdateURL: server.URL}, zerolog.Nop())

	require.NoError(t, client.ApplyMargin(context.Background(), 36.0))
	assert.Empty(t, gotAuth)
}

// TestApplyMargin_ServerError tests a rejected margin update
func TestApplyMargin_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{UpdateURL: server.URL}, zerolog.Nop())

	err := client.ApplyMargin(context.Background(), 36.0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

// TestNewClient_DefaultTimeout tests the timeout fallback
func TestNewClient_DefaultTimeout(t *testing.T) {
	client := NewClient(ClientConfig{}, zerolog.Nop())
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)

	custom := NewClient(ClientConfig{Timeout: 3 * time.Second}, zerolog.Nop())
	assert.Equal(t, 3*time.Second, custom.httpClient.Timeout)
}
