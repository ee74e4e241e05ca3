package avatars

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bizplan/internal/config"
)

func TestPublicBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Avatars
		want string
	}{
		{
			name: "explicit public url",
			cfg:  config.Avatars{PublicBaseURL: "https://cdn.example.com/", Bucket: "b", Endpoint: "http://minio:9000"},
			want: "https://cdn.example.com",
		},
		{
			name: "custom endpoint",
			cfg:  config.Avatars{Bucket: "b", Endpoint: "http://minio:9000/"},
			want: "http://minio:9000/b",
		},
		{
			name: "aws",
			cfg:  config.Avatars{Bucket: "b", Region: "eu-west-3"},
			want: "https://b.s3.eu-west-3.amazonaws.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBase(tt.cfg))
		})
	}
}

func TestStore_Put(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := New(context.Background(), config.Avatars{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		Bucket:          "avatars",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "u1/a.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/avatars/u1/a.png", url)
	assert.Equal(t, "/avatars/u1/a.png", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png-bytes"), gotBody)
}

func TestStore_Put_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	store, err := New(context.Background(), config.Avatars{
		Endpoint: srv.URL, Region: "us-east-1", Bucket: "avatars", AccessKeyID: "key", SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "u1/a.png", "image/png", []byte("x"))
	assert.Error(t, err)
}
