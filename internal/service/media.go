package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/validation"
)

// ErrUploadsDisabled is returned when no object storage is configured.
var ErrUploadsDisabled = errors.New("media uploads are not configured")

// Presigner creates time-limited upload URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string) (uploadURL string, expires time.Time, err error)
	PublicURL(key string) string
}

// UploadRequest asks for a signed upload slot.
type UploadRequest struct {
	MediaType   domain.MediaType `json:"mediaType" validate:"required,oneof=image video"`
	ContentType string           `json:"contentType" validate:"required"`
	Filename    string           `json:"filename" validate:"required,max=255"`
}

// Upload is a signed slot the client PUTs the file body to.
type Upload struct {
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	Key       string    `json:"publicId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MediaService hands out upload URLs for trip photos and videos.
type MediaService struct {
	presigner Presigner
}

// NewMediaService constructs a MediaService. A nil presigner disables uploads.
func NewMediaService(p Presigner) *MediaService {
	return &MediaService{presigner: p}
}

// PresignUpload validates req and returns a signed PUT URL under
// trips/<owner>/<random><ext>.
func (s *MediaService) PresignUpload(ctx context.Context, ownerID uuid.UUID, req UploadRequest) (Upload, error) {
	if ownerID == uuid.Nil {
		return Upload{}, fmt.Errorf("service.MediaService.PresignUpload: %w", domain.ErrUnauthorized)
	}
	if s.presigner == nil {
		return Upload{}, fmt.Errorf("service.MediaService.PresignUpload: %w", ErrUploadsDisabled)
	}

	req.ContentType = strings.ToLower(strings.TrimSpace(req.ContentType))
	req.Filename = strings.TrimSpace(req.Filename)
	if err := validation.Struct(req); err != nil {
		return Upload{}, fmt.Errorf("service.MediaService.PresignUpload: %w", err)
	}
	if !strings.HasPrefix(req.ContentType, string(req.MediaType)+"/") {
		return Upload{}, fmt.Errorf("service.MediaService.PresignUpload: %w",
			domain.NewValidationError("contentType", fmt.Sprintf("contentType must be %s/*", req.MediaType)))
	}

	key := fmt.Sprintf("trips/%s/%s%s", ownerID, uuid.NewString(), strings.ToLower(path.Ext(req.Filename)))
	uploadURL, expires, err := s.presigner.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		return Upload{}, fmt.Errorf("service.MediaService.PresignUpload: %w", err)
	}
	return Upload{
		UploadURL: uploadURL,
		FileURL:   s.presigner.PublicURL(key),
		Key:       key,
		ExpiresAt: expires,
	}, nil
}
