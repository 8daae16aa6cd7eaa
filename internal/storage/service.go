package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/firebase"
)

// Bucket is the minimal object store the Service writes to.
type Bucket interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
}

type gcsBucket struct {
	handle *gcs.BucketHandle
}

func (b *gcsBucket) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	w := b.handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *gcsBucket) Delete(ctx context.Context, key string) error {
	return b.handle.Object(key).Delete(ctx)
}

// NewBucket opens the configured bucket through the Firebase app. It returns a nil
// Bucket when storage is not configured, which puts the Service in placeholder mode.
func NewBucket(cfg *config.Config, fb *firebase.FirebaseService) (Bucket, error) {
	if !cfg.StorageConfigured() {
		return nil, nil
	}
	handle, err := fb.Bucket(context.Background(), cfg.StorageBucket)
	if err != nil {
		return nil, err
	}
	return &gcsBucket{handle: handle}, nil
}

// UploadResult is the public URL of a stored object and the key needed to delete it.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Service uploads and deletes image blobs.
type Service struct {
	bucket         Bucket
	publicBaseURL  string
	placeholderURL string
	logger         *zap.Logger
	newName        func() string
}

// NewService creates the storage service. With a nil bucket or no public base URL
// uploads return the placeholder URL and nothing is written.
func NewService(cfg *config.Config, bucket Bucket, logger *zap.Logger) *Service {
	s := &Service{
		bucket:         bucket,
		publicBaseURL:  strings.TrimRight(cfg.StoragePublicBaseURL, "/"),
		placeholderURL: cfg.StoragePlaceholderURL,
		logger:         logger.Named("storage"),
		newName:        uuid.NewString,
	}
	if !s.Enabled() {
		s.logger.Warn("Object storage is not configured; image uploads will return placeholder URLs")
	}
	return s
}

// Enabled reports whether uploads reach a real bucket.
func (s *Service) Enabled() bool {
	return s.bucket != nil && s.publicBaseURL != ""
}

// Upload stores r under folder with a random name and returns its public URL.
func (s *Service) Upload(ctx context.Context, r io.Reader, contentType, folder string) (*UploadResult, error) {
	ext, err := extensionFor(contentType)
	if err != nil {
		return nil, err
	}
	cleanFolder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	key := path.Join(cleanFolder, s.newName()+ext)

	if !s.Enabled() {
		s.logger.Debug("Storage not configured, returning placeholder", zap.String("key", key))
		return &UploadResult{URL: s.placeholderURL, Key: key}, nil
	}

	if err := s.bucket.Put(ctx, key, contentType, r); err != nil {
		s.logger.Error("Failed to upload object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.Info("Object uploaded", zap.String("key", key))
	return &UploadResult{URL: s.publicBaseURL + "/" + key, Key: key}, nil
}

// Delete removes the object at key. Failures are logged and reported as false.
func (s *Service) Delete(ctx context.Context, key string) bool {
	if key == "" || !s.Enabled() {
		return false
	}
	if err := s.bucket.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete object", zap.String("key", key), zap.Error(err))
		return false
	}
	s.logger.Info("Object deleted", zap.String("key", key))
	return true
}

// ExtractKeyFromURL recovers the object key from a URL issued by Upload. It only
// checks the URL shape, not whether the object still exists.
func (s *Service) ExtractKeyFromURL(rawURL string) (string, bool) {
	if s.publicBaseURL == "" {
		return "", false
	}
	if _, err := url.Parse(rawURL); err != nil {
		return "", false
	}
	key, found := strings.CutPrefix(rawURL, s.publicBaseURL+"/")
	if !found {
		return "", false
	}
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func extensionFor(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/jpeg"):
		return ".jpg", nil
	case strings.HasPrefix(contentType, "image/png"):
		return ".png", nil
	case strings.HasPrefix(contentType, "image/gif"):
		return ".gif", nil
	case strings.HasPrefix(contentType, "image/webp"):
		return ".webp", nil
	default:
		return "", common.ErrBadRequest.WithDetails(fmt.Sprintf("Unsupported image content type %q.", contentType))
	}
}

func cleanFolder(folder string) (string, error) {
	cleaned := path.Clean(strings.Trim(folder, "/"))
	if cleaned == "." || cleaned == "" {
		return "uploads", nil
	}
	if strings.HasPrefix(cleaned, "..") {
		return "", common.ErrBadRequest.WithDetails("Invalid storage folder.")
	}
	return cleaned, nil
}
