package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/handler"
	"github.com/pkordes/wanderlogue/backend/internal/service"
)

func TestPresignUpload_200(t *testing.T) {
	svc := &mockMediaServicer{
		presign: func(_ context.Context, owner uuid.UUID, req service.UploadRequest) (service.Upload, error) {
			assert.Equal(t, aliceID, owner)
			assert.Equal(t, domain.MediaImage, req.MediaType)
			return service.Upload{
				UploadURL: "https://bucket/put?sig=1",
				FileURL:   "https://cdn/trips/a/b.jpg",
				Key:       "trips/a/b.jpg",
				ExpiresAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Media: svc}, handler.Options{})

	rec := do(t, h, http.MethodPost, "/api/uploads/presign",
		map[string]string{"mediaType": "image", "contentType": "image/jpeg", "filename": "b.jpg"}, aliceToken)

	require.Equal(t, http.StatusOK, rec.Code)
	upload := decode(t, rec)["upload"].(map[string]any)
	assert.Equal(t, "trips/a/b.jpg", upload["publicId"])
	assert.Equal(t, "https://bucket/put?sig=1", upload["uploadUrl"])
}

func TestPresignUpload_503_NotConfigured(t *testing.T) {
	svc := &mockMediaServicer{
		presign: func(context.Context, uuid.UUID, service.UploadRequest) (service.Upload, error) {
			return service.Upload{}, fmt.Errorf("service.MediaService.PresignUpload: %w", service.ErrUploadsDisabled)
		},
	}
	h := newHTTPHandler(handler.Deps{Media: svc}, handler.Options{})

	rec := do(t, h, http.MethodPost, "/api/uploads/presign", map[string]string{}, aliceToken)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"media uploads are not configured"}`, rec.Body.String())
}

func TestPresignUpload_400_EmptyBody(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Media: &mockMediaServicer{}}, handler.Options{})

	rec := do(t, h, http.MethodPost, "/api/uploads/presign", nil, aliceToken)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request body is required", decode(t, rec)["message"])
}
