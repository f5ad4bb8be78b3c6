package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

func TestEmbed_BatchOrderedByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		// Respond out of order; the adapter must reorder by index.
		w.Write([]byte(`{"data":[
			{"index":1,"embedding":[2.0]},
			{"index":0,"embedding":[1.0]}
		]}`))
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: server.URL, Model: "text-embedding-ada-002"})
	require.NoError(t, err)

	vectors, err := svc.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1.0}, vectors[0])
	assert.Equal(t, []float32{2.0}, vectors[1])
}

func TestEmbed_SendsDimensionsForV3Models(t *testing.T) {
	var got embeddingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1.0]}]}`))
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(Config{
		APIKey: "k", BaseURL: server.URL,
		Model: "text-embedding-3-small", Dimensions: 256,
	})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, 256, got.Dimensions)
	assert.Equal(t, 256, svc.Dimensions())
}

func TestEmbed_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: domain.ErrRateLimited},
		{name: "bad key", status: http.StatusUnauthorized, wantErr: domain.ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, wantErr: domain.ErrAuth},
		{name: "server error", status: http.StatusBadGateway, wantErr: domain.ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Embed(context.Background(), []string{"text"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_BadKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "wrong", BaseURL: server.URL})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrAuth)
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestNewEmbeddingService_ModelDimensions(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())
	assert.Equal(t, "text-embedding-3-large", svc.Model())
}
