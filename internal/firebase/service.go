package firebase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"estate_market_backend/internal/config"
)

const initTimeout = 15 * time.Second

var errEmptyToken = errors.New("empty ID token")

// FirebaseService owns the Admin SDK app: ID token verification for the auth
// middleware and bucket handles for image storage.
type FirebaseService struct {
	app          *firebase.App
	auth         *auth.Client
	checkRevoked bool
	logger       *zap.Logger
}

func appConfig(cfg *config.Config) *firebase.Config {
	if cfg.FirebaseProjectID == "" && cfg.StorageBucket == "" {
		return nil
	}
	return &firebase.Config{ProjectID: cfg.FirebaseProjectID, StorageBucket: cfg.StorageBucket}
}

// NewFirebaseService loads the service account key named by
// FIREBASE_SERVICE_ACCOUNT_KEY_PATH and opens the auth client.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	log := logger.Named("Firebase")
	if cfg.FirebaseServiceAccountKeyPath == "" {
		return nil, errors.New("firebase: service account key path is required")
	}
	keyPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	app, err := firebase.NewApp(ctx, appConfig(cfg), option.WithCredentialsFile(keyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app from %s: %w", keyPath, err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firebase auth client: %w", err)
	}

	log.Info("Firebase Admin SDK initialized",
		zap.String("projectID", cfg.FirebaseProjectID),
		zap.Bool("checkRevoked", cfg.FirebaseCheckRevoked),
	)
	return &FirebaseService{app: app, auth: authClient, checkRevoked: cfg.FirebaseCheckRevoked, logger: log}, nil
}

// VerifyIDToken checks the token signature and expiry, and revocation when
// FIREBASE_CHECK_REVOKED is on.
func (s *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "" {
		return nil, errEmptyToken
	}
	verify := s.auth.VerifyIDToken
	if s.checkRevoked {
		verify = s.auth.VerifyIDTokenAndCheckRevoked
	}
	token, err := verify(ctx, idToken)
	if err != nil {
		s.logger.Debug("ID token rejected", zap.Error(err), zap.Bool("revoked", auth.IsIDTokenRevoked(err)))
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	return token, nil
}

// Bucket opens a handle on the named Cloud Storage bucket.
func (s *FirebaseService) Bucket(ctx context.Context, name string) (*gcs.BucketHandle, error) {
	client, err := s.app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firebase storage client: %w", err)
	}
	handle, err := client.Bucket(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", name, err)
	}
	return handle, nil
}
