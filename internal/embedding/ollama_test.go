package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newOllamaServer fakes the two Ollama endpoints the provider touches.
func newOllamaServer(t *testing.T, model string, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ollamaPathTags:
			json.NewEncoder(w).Encode(ollamaTagsResponse{
				Models: []ollamaModel{{Name: model}},
			})
		case ollamaPathEmbeddings:
			var req ollamaEmbedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(ollamaEmbedResponse{
				Embedding: make([]float32, dims),
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaProviderEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a vector of the expected dimensions", func(t *testing.T) {
		srv := newOllamaServer(t, "test-model", 4)
		defer srv.Close()

		p := NewOllamaProvider(
			WithOllamaURL(srv.URL),
			WithModel("test-model"),
			WithDimensions(4),
		)

		emb, err := p.Embed(ctx, "some text")
		if err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
		if emb.Dimensions() != 4 {
			t.Errorf("expected 4 dimensions, got %d", emb.Dimensions())
		}
	})

	t.Run("rejects unexpected dimensions", func(t *testing.T) {
		srv := newOllamaServer(t, "test-model", 3)
		defer srv.Close()

		p := NewOllamaProvider(
			WithOllamaURL(srv.URL),
			WithModel("test-model"),
			WithDimensions(4),
		)

		if _, err := p.Embed(ctx, "some text"); err == nil {
			t.Error("expected an error for a dimension mismatch")
		}
	})

	t.Run("fails when the model is not pulled", func(t *testing.T) {
		srv := newOllamaServer(t, "other-model", 4)
		defer srv.Close()

		p := NewOllamaProvider(
			WithOllamaURL(srv.URL),
			WithModel("test-model"),
			WithDimensions(4),
		)

		_, err := p.Embed(ctx, "some text")
		if err == nil {
			t.Fatal("expected an error for a missing model")
		}
		if !strings.Contains(err.Error(), "test-model") {
			t.Errorf("error should name the missing model, got: %v", err)
		}
	})

	t.Run("fails when the server is down", func(t *testing.T) {
		srv := newOllamaServer(t, "test-model", 4)
		srv.Close() // immediately

		p := NewOllamaProvider(
			WithOllamaURL(srv.URL),
			WithModel("test-model"),
			WithDimensions(4),
		)

		if _, err := p.Embed(ctx, "some text"); err == nil {
			t.Error("expected an error when ollama is unreachable")
		}
	})
}

func TestOllamaProviderDefaults(t *testing.T) {
	p := NewOllamaProvider()

	if p.ModelName() != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, p.ModelName())
	}
	if p.Dimensions() != DefaultDimensions {
		t.Errorf("expected %d dimensions, got %d", DefaultDimensions, p.Dimensions())
	}
}
