package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsMappedRequest(t *testing.T) {
	var got imageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://img.example/1.png","revised_prompt":"rp"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "", srv.URL+"/")
	res, err := c.Generate(context.Background(), Request{
		Prompt:      "a red fox",
		Style:       "watercolor",
		AspectRatio: "16:9",
		Quality:     "ultra",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.png", res.URL)
	assert.Equal(t, "rp", res.RevisedPrompt)

	assert.Equal(t, "dall-e-3", got.Model)
	assert.Equal(t, "1792x1024", got.Size)
	assert.Equal(t, "hd", got.Quality)
	assert.Equal(t, 1, got.N)
	assert.Contains(t, got.Prompt, "a red fox, watercolor painting")
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content policy violation","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("sk-test", "dall-e-3", srv.URL).Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content policy violation")
}

func TestGenerateEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("sk-test", "", srv.URL).Generate(context.Background(), Request{Prompt: "x"})
	assert.Error(t, err)
}

func TestGenerateHonoursContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewOpenAIClient("sk-test", "", srv.URL).Generate(ctx, Request{Prompt: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateWithoutKey(t *testing.T) {
	_, err := NewOpenAIClient("", "", "").Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPromptMapping(t *testing.T) {
	assert.Equal(t, "a cat", EnhancePrompt("  a cat ", "unknown", ""))
	assert.Equal(t, "a cat, anime style, manga, Japanese animation, vibrant colors, detailed, cel-shaded. Avoid: dogs",
		EnhancePrompt("a cat", "anime", "dogs"))

	assert.Equal(t, "1024x1024", SizeFor("4:3"))
	assert.Equal(t, "1024x1792", SizeFor("9:16"))
	assert.Equal(t, "1024x1024", SizeFor("21:9"))

	assert.Equal(t, "standard", ProviderQuality("high"))
	assert.Equal(t, "hd", ProviderQuality("ultra"))
}

func TestStylesAndSamples(t *testing.T) {
	styles := Styles()
	assert.Len(t, styles, 20)
	assert.True(t, IsKnownStyle("cyberpunk"))
	assert.False(t, IsKnownStyle("baroque"))

	for i := 0; i < 20; i++ {
		assert.True(t, IsSampleImage(SampleImage()))
	}
}
