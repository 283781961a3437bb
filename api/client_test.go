package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://en.wikipedia.org/w/api.php/")

	assert.NotNil(t, client)
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", client.apiURL)
	assert.Equal(t, defaultUserAgent, client.userAgent)
}

func TestClient_Headers(t *testing.T) {
	var capturedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetUserAgent("test-agent/1.0")
	_, err := client.do(context.Background(), url.Values{})
	require.NoError(t, err)

	assert.Equal(t, "application/json", capturedHeaders.Get("Accept"))
	assert.Equal(t, "test-agent/1.0", capturedHeaders.Get("User-Agent"))
}

func TestClient_QueryParameters(t *testing.T) {
	var captured url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		w.Write([]byte(`{"query": {}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	params := url.Values{}
	params.Set("meta", "siteinfo")
	_, err := client.Query(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "query", captured.Get("action"))
	assert.Equal(t, "json", captured.Get("format"))
	assert.Equal(t, "2", captured.Get("formatversion"))
	assert.Equal(t, "siteinfo", captured.Get("meta"))
}

func TestClient_ErrorResponse(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		responseBody   string
		expectedErrMsg string
	}{
		{
			name:           "api error with 200 status",
			statusCode:     200,
			responseBody:   `{"error": {"code": "badvalue", "info": "Unrecognized value for parameter \"action\"."}}`,
			expectedErrMsg: "badvalue: Unrecognized value",
		},
		{
			name:           "403 forbidden",
			statusCode:     403,
			responseBody:   `Forbidden`,
			expectedErrMsg: "http: Forbidden",
		},
		{
			name:           "500 server error",
			statusCode:     500,
			responseBody:   `Internal server error`,
			expectedErrMsg: "Internal server error",
		},
		{
			name:           "malformed body",
			statusCode:     200,
			responseBody:   `<html>`,
			expectedErrMsg: "failed to parse response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.do(context.Background(), url.Values{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
		})
	}
}

func TestClient_ErrorResponseStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).do(context.Background(), url.Values{})
	var apiErr *ErrorResponse
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Slow response
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := client.do(ctx, url.Values{})
	require.Error(t, err)
}
