// Package storage signs direct-to-bucket uploads against any S3-compatible
// object store (AWS S3, Cloudflare R2, MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds the bucket connection settings.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicURL is the base URL objects are served from, e.g. a CDN domain.
	PublicURL string
	// PresignTTL is how long an upload URL stays valid.
	PresignTTL time.Duration
}

// S3Presigner creates presigned PUT URLs.
type S3Presigner struct {
	presign   *s3.PresignClient
	bucket    string
	publicURL string
	ttl       time.Duration
	now       func() time.Time
}

// NewS3Presigner builds a presigner from cfg. Signing is local; no request is
// made to the store until a client uses the returned URL.
func NewS3Presigner(cfg Config) (*S3Presigner, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("storage.NewS3Presigner: bucket and credentials are required")
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}

	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.Endpoint != "",
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}

	return &S3Presigner{
		presign:   s3.NewPresignClient(s3.New(opts)),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		ttl:       cfg.PresignTTL,
		now:       time.Now,
	}, nil
}

// PresignPut returns a URL the client can PUT the object body to, and when
// that URL expires.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error) {
	issued := p.now()
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = p.ttl
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage.S3Presigner.PresignPut: %w", err)
	}
	return req.URL, issued.Add(p.ttl), nil
}

// PublicURL returns where key is served from once uploaded.
func (p *S3Presigner) PublicURL(key string) string {
	return p.publicURL + "/" + key
}

func defaultPublicURL(cfg Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}
