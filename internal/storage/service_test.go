package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBucket struct {
	mock.Mock
}

func (m *MockBucket) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, key, contentType, string(body))
	return args.Error(0)
}

func (m *MockBucket) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func setupStorageService(t *testing.T, bucket Bucket) *Service {
	cfg := &config.Config{
		StoragePublicBaseURL:  "https://cdn.example.com/estate/",
		StoragePlaceholderURL: "https://placehold.co/800x600",
	}
	s := NewService(cfg, bucket, zap.NewNop())
	s.newName = func() string { return "fixed-name" }
	return s
}

func TestService_Upload_WritesToBucket(t *testing.T) {
	bucket := new(MockBucket)
	svc := setupStorageService(t, bucket)
	ctx := context.Background()

	bucket.On("Put", ctx, "properties/7/fixed-name.png", "image/png", "png-bytes").Return(nil).Once()

	res, err := svc.Upload(ctx, bytes.NewBufferString("png-bytes"), "image/png", "properties/7")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/estate/properties/7/fixed-name.png", res.URL)
	assert.Equal(t, "properties/7/fixed-name.png", res.Key)
	bucket.AssertExpectations(t)
}

func TestService_Upload_PlaceholderWhenUnconfigured(t *testing.T) {
	svc := NewService(&config.Config{StoragePlaceholderURL: "https://placehold.co/800x600"}, nil, zap.NewNop())

	res, err := svc.Upload(context.Background(), bytes.NewBufferString("x"), "image/jpeg", "properties")
	require.NoError(t, err)
	assert.Equal(t, "https://placehold.co/800x600", res.URL)
	assert.NotEmpty(t, res.Key)
	assert.False(t, svc.Enabled())
	assert.False(t, svc.Delete(context.Background(), res.Key))
}

func TestService_Upload_RejectsUnsupportedType(t *testing.T) {
	svc := setupStorageService(t, new(MockBucket))

	_, err := svc.Upload(context.Background(), bytes.NewBufferString("x"), "application/pdf", "properties")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestService_Upload_RejectsTraversalFolder(t *testing.T) {
	svc := setupStorageService(t, new(MockBucket))

	_, err := svc.Upload(context.Background(), bytes.NewBufferString("x"), "image/png", "../secrets")
	require.Error(t, err)
}

func TestService_Delete_ReportsFailureAsFalse(t *testing.T) {
	bucket := new(MockBucket)
	svc := setupStorageService(t, bucket)
	ctx := context.Background()

	bucket.On("Delete", ctx, "properties/a.png").Return(nil).Once()
	bucket.On("Delete", ctx, "properties/missing.png").Return(errors.New("object doesn't exist")).Once()

	assert.True(t, svc.Delete(ctx, "properties/a.png"))
	assert.False(t, svc.Delete(ctx, "properties/missing.png"))
	bucket.AssertExpectations(t)
}

func TestService_ExtractKeyFromURL(t *testing.T) {
	svc := setupStorageService(t, new(MockBucket))

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"own url", "https://cdn.example.com/estate/properties/7/a.png", "properties/7/a.png", true},
		{"own url with query", "https://cdn.example.com/estate/properties/a.png?v=2", "properties/a.png", true},
		{"foreign host", "https://other.example.com/estate/properties/a.png", "", false},
		{"base only", "https://cdn.example.com/estate/", "", false},
		{"traversal", "https://cdn.example.com/estate/../etc/passwd", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := svc.ExtractKeyFromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
