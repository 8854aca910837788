package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mock_repo "fantasy-ai/backend/internal/repository/mocks"
)

// TestOpenRouterClient checks request construction and response parsing against a
// stand-in completions server.
func TestOpenRouterClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Sends bearer key and mixed content", func(t *testing.T) {
		var captured struct {
			Path string
			Auth string
			Body map[string]any
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured.Path = r.URL.Path
			captured.Auth = r.Header.Get("Authorization")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured.Body))

			w.Header().Set("Content-Type", "application/json")
			_, err := w.Write([]byte(`{"id":"gen-1","model":"m","choices":[{"message":{"role":"assistant","content":"Hi there"}}]}`))
			assert.NoError(t, err)
		}))
		defer server.Close()

		client := NewOpenRouterClient(server.URL+"/", StaticKey("sk-test"), time.Second)
		resp, err := client.Complete(ctx, &CompletionRequest{
			Model: "m",
			Messages: []Message{
				TextMessage(RoleSystem, "You are Luna."),
				ImageMessage("what is this?", []byte{0xff, 0xd8}, ""),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Hi there", resp.Content)
		assert.Equal(t, "gen-1", resp.ID)

		assert.Equal(t, "/chat/completions", captured.Path)
		assert.Equal(t, "Bearer sk-test", captured.Auth)
		msgs := captured.Body["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "You are Luna.", msgs[0].(map[string]any)["content"])
		parts := msgs[1].(map[string]any)["content"].([]any)
		require.Len(t, parts, 2)
		img := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
		assert.True(t, strings.HasPrefix(img, "data:image/jpeg;base64,"))
	})

	t.Run("Failure - Non-2xx status carries the body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("upstream exploded"))
		}))
		defer server.Close()

		client := NewOpenRouterClient(server.URL, StaticKey("k"), time.Second)
		_, err := client.Complete(ctx, &CompletionRequest{Model: "m", Messages: []Message{TextMessage(RoleUser, "hi")}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "upstream exploded")
	})

	t.Run("Failure - Long error body is cut short", func(t *testing.T) {
		page := "<html>" + strings.Repeat("gateway error ", 500) + "</html>"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(page))
		}))
		defer server.Close()

		client := NewOpenRouterClient(server.URL, StaticKey("k"), time.Second)
		_, err := client.Complete(ctx, &CompletionRequest{Model: "m", Messages: []Message{TextMessage(RoleUser, "hi")}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
		assert.Contains(t, err.Error(), "<html>gateway error")
		assert.True(t, strings.HasSuffix(err.Error(), "..."))
		assert.Less(t, len(err.Error()), 300)
	})

	t.Run("Failure - No choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(server.URL, StaticKey("k"), time.Second)
		_, err := client.Complete(ctx, &CompletionRequest{Model: "m", Messages: []Message{TextMessage(RoleUser, "hi")}})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("Failure - Missing key makes no request", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		defer server.Close()

		client := NewOpenRouterClient(server.URL, StaticKey(""), time.Second)
		_, err := client.Complete(ctx, &CompletionRequest{Model: "m"})
		assert.ErrorIs(t, err, ErrNoAPIKey)
		assert.False(t, called)
	})

	t.Run("Failure - Client timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewOpenRouterClient(server.URL, StaticKey("k"), 50*time.Millisecond)
		_, err := client.Complete(ctx, &CompletionRequest{Model: "m", Messages: []Message{TextMessage(RoleUser, "hi")}})
		assert.Error(t, err)
	})
}

func TestWhisperTranscriber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper", r.FormValue("model"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "voice.m4a", hdr.Filename)
		assert.Equal(t, "audio-bytes", string(data))

		_, _ = w.Write([]byte(`{"text":"hello world"}`))
	}))
	defer server.Close()

	tr := NewWhisperTranscriber(server.URL, "", StaticKey("k"), time.Second)
	text, err := tr.Transcribe(context.Background(), "voice.m4a", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestWhisperTranscriber_LongErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 10000)))
	}))
	defer server.Close()

	tr := NewWhisperTranscriber(server.URL, "", StaticKey("k"), time.Second)
	_, err := tr.Transcribe(context.Background(), "voice.m4a", strings.NewReader("audio-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Less(t, len(err.Error()), 300)
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "bad key", errorDetail([]byte("  bad key\n")))
	assert.Equal(t, strings.Repeat("é", maxErrorDetail)+"...", errorDetail([]byte(strings.Repeat("é", maxErrorDetail+1))))
}

func TestStoredKeyProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Configured key wins", func(t *testing.T) {
		p := NewStoredKeyProvider("cfg-key", mock_repo.NewMockKeySource(t), "")
		key, err := p.APIKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cfg-key", key)
	})

	t.Run("Stored key is loaded once", func(t *testing.T) {
		src := mock_repo.NewMockKeySource(t)
		src.On("GetAPIKey", mock.Anything, DefaultKeyName).Return("db-key", nil).Once()

		p := NewStoredKeyProvider("", src, "")
		for i := 0; i < 3; i++ {
			key, err := p.APIKey(ctx)
			require.NoError(t, err)
			assert.Equal(t, "db-key", key)
		}
	})

	t.Run("Lookup failure", func(t *testing.T) {
		src := mock_repo.NewMockKeySource(t)
		src.On("GetAPIKey", mock.Anything, DefaultKeyName).Return("", errors.New("boom")).Once()

		_, err := NewStoredKeyProvider("", src, "").APIKey(ctx)
		assert.ErrorIs(t, err, ErrNoAPIKey)
	})
}

func TestMessageJSON(t *testing.T) {
	b, err := json.Marshal(TextMessage(RoleUser, "hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(b))

	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`), &m))
	assert.Equal(t, "ab", m.Text())
}

func TestDataURI(t *testing.T) {
	uri := DataURI([]byte("png!"), "image/png")
	mimeType, data, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, "png!", string(data))

	_, _, err = ParseDataURI("https://example.com/x.png")
	assert.Error(t, err)
}

func TestToGeminiContents(t *testing.T) {
	system, history, last, err := toGeminiContents([]Message{
		TextMessage(RoleSystem, "You are Luna."),
		TextMessage(RoleAssistant, "Hello!"),
		TextMessage(RoleUser, "Earlier question"),
		TextMessage(RoleAssistant, "Earlier answer"),
		ImageMessage("look", []byte("img"), "image/png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "You are Luna.", system)
	require.Len(t, history, 3)
	assert.Equal(t, "model", history[0].Role)
	assert.Equal(t, "user", history[1].Role)
	require.Len(t, last, 2)
	assert.Equal(t, genai.Text("look"), last[0])
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte("img")}, last[1])

	_, _, _, err = toGeminiContents([]Message{TextMessage(RoleAssistant, "only me")})
	assert.Error(t, err)
}
