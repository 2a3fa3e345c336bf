package screenshot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		opts    []Option
		wantErr bool
	}{
		{
			name:   "valid config",
			apiKey: "test-key",
		},
		{
			name:    "missing API key",
			apiKey:  "",
			wantErr: true,
		},
		{
			name:   "trailing slash stripped",
			apiKey: "test-key",
			opts:   []Option{WithBaseURL("https://example.com/")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.apiKey, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "apiKey", validationErr.Field)
				assert.Contains(t, err.Error(), "API key is required")
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, client)
			assert.Equal(t, tt.apiKey, client.apiKey)
			assert.NotContains(t, client.baseURL, "example.com/")
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient("test-key")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.timeout)
	assert.NotNil(t, client.httpClient)
}

func TestClientOptions(t *testing.T) {
	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("test-key", WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.timeout)
	})

	t.Run("with base URL", func(t *testing.T) {
		client, err := NewClient("test-key", WithBaseURL("http://localhost:8080"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", client.baseURL)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{}
		client, err := NewClient("test-key", WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Equal(t, customClient, client.httpClient)
	})
}

func TestCapture(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/screenshot", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com", body["url"])
		assert.Equal(t, float64(1280), body["width"])
		assert.Equal(t, float64(720), body["height"])

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Duration-Ms", "512")
		w.Header().Set("X-Cache", "HIT")
		w.Write(payload)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	result, err := client.Capture(context.Background(), CaptureOptions{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, payload, result.Data)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, len(payload), result.Size)
	assert.Equal(t, 512, result.DurationMS)
	assert.True(t, result.Cached)
}

func TestCapture_MetadataDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress the automatic content-type so the fallback path runs.
		w.Header()["Content-Type"] = nil
		w.Header().Set("X-Duration-Ms", "not-a-number")
		w.Header().Set("X-Cache", "MISS")
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	result, err := client.Capture(context.Background(), CaptureOptions{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, "application/octet-stream", result.ContentType)
	assert.Equal(t, 0, result.DurationMS)
	assert.False(t, result.Cached)
}

func TestCapture_ExplicitOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1920), body["width"])
		assert.Equal(t, float64(1080), body["height"])
		assert.Equal(t, "jpeg", body["format"])
		assert.Equal(t, float64(80), body["quality"])
		assert.Equal(t, true, body["full_page"])
		assert.Equal(t, true, body["dark_mode"])
		assert.Equal(t, float64(250), body["delay"])
		assert.Equal(t, "#main", body["selector"])
		assert.Equal(t, float64(600), body["cache_ttl"])

		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Capture(context.Background(), CaptureOptions{
		URL: "https://example.com",
		Options: Options{
			Width:    1920,
			Height:   1080,
			FullPage: true,
			Format:   FormatJPEG,
			Quality:  80,
			DarkMode: true,
			DelayMS:  250,
			Selector: "#main",
			CacheTTL: 600,
		},
	})
	require.NoError(t, err)
}

func TestCapture_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Capture(context.Background(), CaptureOptions{URL: "https://example.com"})
	elapsed := time.Since(start)

	require.Error(t, err)
	var networkErr *NetworkError
	require.ErrorAs(t, err, &networkErr)
	assert.Equal(t, "TIMEOUT", networkErr.Code)
	assert.Contains(t, networkErr.Message, "50ms")
	assert.Less(t, elapsed, 400*time.Millisecond)
}

func TestCapture_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Capture(context.Background(), CaptureOptions{URL: "https://example.com"})
	require.Error(t, err)

	var networkErr *NetworkError
	require.ErrorAs(t, err, &networkErr)
	assert.Equal(t, "NETWORK_ERROR", networkErr.Code)
	assert.Zero(t, networkErr.StatusCode)
	require.NotNil(t, networkErr.Unwrap())
}

func TestCaptureBatch(t *testing.T) {
	imageData := []byte("fake-image-data")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/batch", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		urls, ok := body["urls"].([]any)
		assert.True(t, ok)
		assert.Len(t, urls, 2)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"url":          "https://example.com",
					"success":      true,
					"data":         base64.StdEncoding.EncodeToString(imageData),
					"content_type": "image/png",
					"size":         len(imageData),
					"duration_ms":  321,
				},
				{
					"url":     "https://broken.example.com",
					"success": false,
					"error": map[string]any{
						"code":    "RENDER_FAILED",
						"message": "navigation timed out",
					},
				},
			},
			"summary": map[string]any{
				"total":       2,
				"succeeded":   1,
				"failed":      1,
				"duration_ms": 980,
			},
		})
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	result, err := client.CaptureBatch(context.Background(), BatchOptions{
		URLs: []string{"https://example.com", "https://broken.example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, result.Summary.Total, result.Summary.Succeeded+result.Summary.Failed)
	assert.Equal(t, 980, result.Summary.DurationMS)

	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, imageData, result.Results[0].Data)
	assert.Equal(t, "image/png", result.Results[0].ContentType)
	assert.Equal(t, 321, result.Results[0].DurationMS)

	assert.False(t, result.Results[1].Success)
	require.NotNil(t, result.Results[1].Error)
	assert.Equal(t, "RENDER_FAILED", result.Results[1].Error.Code)
	assert.Equal(t, "navigation timed out", result.Results[1].Error.Message)
}

func TestUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/usage", r.URL.Path)
		assert.Empty(t, r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"daily":   map[string]int{"used": 42, "limit": 100, "remaining": 58},
			"monthly": map[string]int{"used": 900, "limit": 2000, "remaining": 1100},
			"plan": map[string]any{
				"name":       "pro",
				"max_width":  3840,
				"max_height": 2160,
			},
		})
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	snapshot, err := client.Usage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Quota{Used: 42, Limit: 100, Remaining: 58}, snapshot.Daily)
	assert.Equal(t, Quota{Used: 900, Limit: 2000, Remaining: 1100}, snapshot.Monthly)
	assert.Equal(t, "pro", snapshot.Plan.Name)
	assert.Equal(t, 3840, snapshot.Plan.MaxWidth)
	assert.Equal(t, 2160, snapshot.Plan.MaxHeight)

	// The client is stateless; an unchanged backend yields identical snapshots.
	again, err := client.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, again)
}
