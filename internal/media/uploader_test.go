package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/model"
)

type recordingUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *recordingUploader) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	if r.err != nil {
		return "", r.err
	}
	return "https://cdn.test/" + key, nil
}

func TestAttacher_Attach(t *testing.T) {
	ctx := context.Background()

	t.Run("Nil staged media", func(t *testing.T) {
		ref, err := NewAttacher(&recordingUploader{}).Attach(ctx, "user:u1", 1, nil)
		require.NoError(t, err)
		assert.Empty(t, ref)
	})

	t.Run("URI only is kept", func(t *testing.T) {
		up := &recordingUploader{}
		ref, err := NewAttacher(up).Attach(ctx, "user:u1", 1, &model.StagedMedia{URI: "file:///tmp/a.jpg"})
		require.NoError(t, err)
		assert.Equal(t, "file:///tmp/a.jpg", ref)
		assert.Empty(t, up.keys)
	})

	t.Run("Bytes are uploaded", func(t *testing.T) {
		up := &recordingUploader{}
		ref, err := NewAttacher(up).Attach(ctx, "device:abc", 7, &model.StagedMedia{Data: []byte("x"), MimeType: "image/png"})
		require.NoError(t, err)
		require.Len(t, up.keys, 1)
		assert.True(t, strings.HasPrefix(up.keys[0], "chat-images/device-abc/7/"))
		assert.True(t, strings.HasSuffix(up.keys[0], ".png"))
		assert.Equal(t, "https://cdn.test/"+up.keys[0], ref)
	})

	t.Run("Upload failure", func(t *testing.T) {
		up := &recordingUploader{err: errors.New("denied")}
		_, err := NewAttacher(up).Attach(ctx, "user:u1", 1, &model.StagedMedia{Data: []byte("x")})
		assert.ErrorContains(t, err, "denied")
	})

	t.Run("No uploader configured", func(t *testing.T) {
		ref, err := NewAttacher(nil).Attach(ctx, "user:u1", 1, &model.StagedMedia{URI: "u", Data: []byte("x")})
		require.NoError(t, err)
		assert.Equal(t, "u", ref)
	})
}

func TestS3Uploader_Upload(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := S3Config{Bucket: "media", Region: "us-east-1", Endpoint: server.URL}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider("id", "secret", ""),
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
	})
	u := newS3Uploader(client, cfg)

	url, err := u.Upload(context.Background(), "chat-images/a.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/chat-images/a.png", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Contains(t, string(gotBody), "png-bytes")
	assert.Equal(t, server.URL+"/media/chat-images/a.png", url)
}

func TestPublicURL_AWS(t *testing.T) {
	u := &S3Uploader{bucket: "b", region: "eu-west-1"}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/k.jpg", u.publicURL("k.jpg"))
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
