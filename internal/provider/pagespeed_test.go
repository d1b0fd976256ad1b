package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageSpeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPageSpeedAttemptSuccess(t *testing.T) {
	server := pageSpeedServer(t, http.StatusOK,
		`{"lighthouseResult":{"categories":{"performance":{"score":0.87}}}}`)

	adapter := NewPageSpeedAdapter(server.URL, "test-key", time.Second)
	outcome := adapter.Attempt(context.Background(), Target{ID: "biz-1", URL: "https://bakery.com"})

	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, 87, outcome.Data["score"])
	assert.Contains(t, outcome.Data["report_url"], "pagespeed.web.dev/report")
}

func TestPageSpeedAttemptMissingURL(t *testing.T) {
	adapter := NewPageSpeedAdapter("http://unused", "", time.Second)

	outcome := adapter.Attempt(context.Background(), Target{ID: "biz-1"})
	assert.Equal(t, StatusFatal, outcome.Status)
}

func TestPageSpeedAttemptClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Status
	}{
		{"rate limited is retryable", http.StatusTooManyRequests, StatusRetryable},
		{"server error is retryable", http.StatusInternalServerError, StatusRetryable},
		{"bad request is fatal", http.StatusBadRequest, StatusFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := pageSpeedServer(t, tt.status, "{}")
			adapter := NewPageSpeedAdapter(server.URL, "", time.Second)

			outcome := adapter.Attempt(context.Background(), Target{ID: "b", URL: "https://x.com"})
			assert.Equal(t, tt.want, outcome.Status)
		})
	}
}

func TestPageSpeedAttemptMalformedBody(t *testing.T) {
	server := pageSpeedServer(t, http.StatusOK, `not json`)
	adapter := NewPageSpeedAdapter(server.URL, "", time.Second)

	outcome := adapter.Attempt(context.Background(), Target{ID: "b", URL: "https://x.com"})
	assert.Equal(t, StatusFatal, outcome.Status)
}

func TestPageSpeedAttemptTransportError(t *testing.T) {
	// Closed server: connection refused must be retryable.
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	adapter := NewPageSpeedAdapter(server.URL, "", time.Second)
	outcome := adapter.Attempt(context.Background(), Target{ID: "b", URL: "https://x.com"})
	assert.Equal(t, StatusRetryable, outcome.Status)
}

func TestPacedAdapterDelegates(t *testing.T) {
	server := pageSpeedServer(t, http.StatusOK,
		`{"lighthouseResult":{"categories":{"performance":{"score":1.0}}}}`)

	paced := NewPacedAdapter(NewPageSpeedAdapter(server.URL, "", time.Second), 100)

	assert.Equal(t, ProviderPageSpeed, paced.Name())

	outcome := paced.Attempt(context.Background(), Target{ID: "b", URL: "https://x.com"})
	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, 100, outcome.Data["score"])
}

func TestPacedAdapterCancelledContext(t *testing.T) {
	paced := NewPacedAdapter(NewPageSpeedAdapter("http://unused", "", time.Second), 0.001)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// First token is available immediately, so burn it.
	_ = paced.Attempt(context.Background(), Target{ID: "b"})

	outcome := paced.Attempt(ctx, Target{ID: "b", URL: "https://x.com"})
	assert.Equal(t, StatusRetryable, outcome.Status)
}
