package imagehost

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/profile-api/internal/errs"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	return NewClient(srv.URL+"/", "client-123", &logger, WithHTTPClient(srv.Client()))
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/3/image", r.URL.Path)
		assert.Equal(t, "Client-ID client-123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "aGVsbG8=", r.PostForm.Get("image"))
		assert.Equal(t, "base64", r.PostForm.Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"abc","link":"https://i.imgur.com/abc.png","deletehash":"del-abc"},"success":true,"status":200}`))
	})

	img, err := c.Upload(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, &Image{ID: "abc", Link: "https://i.imgur.com/abc.png", DeleteHandle: "del-abc"}, img)
}

func TestDelete(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"data":true,"success":true,"status":200}`))
	})

	require.NoError(t, c.Delete(context.Background(), "del-abc"))
	assert.Equal(t, "/3/image/del-abc", path)
}

func TestFailuresAreUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{"data":{"error":"boom"},"success":false,"status":500}`},
		{"unsuccessful body", http.StatusOK, `{"data":{},"success":false,"status":200}`},
		{"garbage", http.StatusOK, `not json`},
		{"missing link", http.StatusOK, `{"data":{"id":"abc"},"success":true,"status":200}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})

			_, err := c.Upload(context.Background(), "aGVsbG8=")
			require.Error(t, err)

			httpErr := errs.From(err)
			assert.Equal(t, errs.KindUpstreamFailure, httpErr.Kind)
			assert.Equal(t, Collaborator, httpErr.Collaborator)
			assert.Equal(t, http.StatusBadGateway, httpErr.Status)
		})
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for range 8 {
		require.Error(t, c.Delete(context.Background(), "x"))
	}
	assert.Equal(t, 5, calls)
}

func TestRejectedImagesDoNotOpenBreaker(t *testing.T) {
	healthy := false
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if !healthy {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"data":{"error":"Invalid URL"},"success":false,"status":400}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"abc","link":"https://i.imgur.com/abc.png","deletehash":"del-abc"},"success":true,"status":200}`))
	})

	for range 6 {
		_, err := c.Upload(context.Background(), "bm90IGFuIGltYWdl")
		require.Error(t, err)

		httpErr := errs.From(err)
		assert.Equal(t, errs.KindValidationFailed, httpErr.Kind)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "image", httpErr.Errors[0].Field)
	}
	assert.Equal(t, 6, calls)

	healthy = true
	img, err := c.Upload(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "abc", img.ID)
}

func TestCredentialFailuresStillCountAgainstBreaker(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	})

	for range 7 {
		_, err := c.Upload(context.Background(), "aGVsbG8=")
		assert.Equal(t, errs.KindUpstreamFailure, errs.KindOf(err))
	}
	assert.Equal(t, 5, calls)
}
