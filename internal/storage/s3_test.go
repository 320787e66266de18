package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "wanderlogue",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		PresignTTL:      10 * time.Minute,
	}
}

func TestNewS3Presigner_RequiresCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.SecretAccessKey = ""

	_, err := NewS3Presigner(cfg)

	assert.Error(t, err)
}

func TestS3Presigner_PresignPut(t *testing.T) {
	p, err := NewS3Presigner(testConfig())
	require.NoError(t, err)
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	raw, expires, err := p.PresignPut(context.Background(), "trips/abc/photo.jpg", "image/jpeg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/wanderlogue/trips/abc/photo.jpg", u.Path, "path-style addressing for custom endpoints")
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, fixed.Add(10*time.Minute), expires)
}

func TestS3Presigner_PublicURL(t *testing.T) {
	p, err := NewS3Presigner(testConfig())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/wanderlogue/trips/k.jpg", p.PublicURL("trips/k.jpg"))

	cfg := testConfig()
	cfg.PublicURL = "https://cdn.example.com/"
	p, err = NewS3Presigner(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/trips/k.jpg", p.PublicURL("trips/k.jpg"))
}
