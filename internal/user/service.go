package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// lastLoginRefreshInterval bounds how often a verified request rewrites last_login_at.
const lastLoginRefreshInterval = 15 * time.Minute

// Service is the full user service used by the user and admin handlers.
type Service interface {
	shared.Service
	GetProfile(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]User, *common.Pagination, error)
	SetRoles(ctx context.Context, id string, roles []string) (*User, error)
}

// ServiceImplementation implements the shared.Service interface.
type ServiceImplementation struct {
	repo   Repository
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		cfg:    cfg,
		logger: logger.Named("UserService"),
		now:    time.Now,
	}
}

// GetUserByID retrieves a user by their ID.
func (s *ServiceImplementation) GetUserByID(ctx context.Context, id string) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Error finding user by ID", zap.Error(err), zap.String("userID", id))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// GetOrCreateUserFromFirebaseClaims provisions the local user row for a verified
// Firebase token. Email, display name and photo are refreshed when the token carries
// new non-empty values. The display name is stored exactly as the provider sent it.
func (s *ServiceImplementation) GetOrCreateUserFromFirebaseClaims(ctx context.Context, token *firebaseauth.Token) (*shared.User, bool, error) {
	if token == nil || token.UID == "" {
		return nil, false, common.ErrUnauthorized.WithDetails("Token has no subject.")
	}
	uid := token.UID
	email := strings.ToLower(strings.TrimSpace(claimString(token.Claims, "email")))
	name := claimString(token.Claims, "name")
	picture := claimString(token.Claims, "picture")

	dbUser, err := s.repo.FindByID(ctx, uid)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Failed to look up user for token", zap.Error(err), zap.String("uid", uid))
		return nil, false, err
	}

	if dbUser == nil {
		now := s.now()
		newUser := &User{
			ID:              uid,
			Email:           nonEmpty(email),
			DisplayName:     nonEmpty(name),
			ProfileImageURL: nonEmpty(picture),
			Roles:           s.initialRoles(uid),
			LastLoginAt:     &now,
		}
		created, err := s.repo.Create(ctx, newUser)
		if err != nil {
			s.logger.Error("Failed to provision user", zap.Error(err), zap.String("uid", uid))
			return nil, false, err
		}
		if created {
			s.logger.Info("Provisioned new user from Firebase token", zap.String("uid", uid))
			return DBToShared(newUser), true, nil
		}
		// Another request provisioned the row first.
		dbUser, err = s.repo.FindByID(ctx, uid)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reload user after concurrent create: %w", err)
		}
		return DBToShared(dbUser), false, nil
	}

	fields := map[string]interface{}{}
	if email != "" && (dbUser.Email == nil || *dbUser.Email != email) {
		fields["email"] = email
		dbUser.Email = &email
	}
	if name != "" && (dbUser.DisplayName == nil || *dbUser.DisplayName != name) {
		fields["display_name"] = name
		dbUser.DisplayName = &name
	}
	if picture != "" && (dbUser.ProfileImageURL == nil || *dbUser.ProfileImageURL != picture) {
		fields["profile_image_url"] = picture
		dbUser.ProfileImageURL = &picture
	}
	if s.isBootstrapAdmin(uid) && !dbUser.Roles.Contains(common.RoleAdmin) {
		roles := append(common.StringList{}, dbUser.Roles...)
		roles = append(roles, common.RoleAdmin)
		fields["roles"] = roles
		dbUser.Roles = roles
	}
	now := s.now()
	if dbUser.LastLoginAt == nil || now.Sub(*dbUser.LastLoginAt) > lastLoginRefreshInterval {
		fields["last_login_at"] = now
		dbUser.LastLoginAt = &now
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, uid, fields); err != nil {
			s.logger.Error("Failed to refresh user from token claims", zap.Error(err), zap.String("uid", uid))
			return nil, false, err
		}
	}
	return DBToShared(dbUser), false, nil
}

// GetProfile returns the full profile of a user.
func (s *ServiceImplementation) GetProfile(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies the supplied profile fields and returns the stored row.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProfileUpdate(req, dbUser)
	if err := s.repo.Update(ctx, dbUser); err != nil {
		s.logger.Error("Failed to update user profile", zap.Error(err), zap.String("userID", id))
		return nil, err
	}
	return dbUser, nil
}

// ListUsers returns one page of users, newest first.
func (s *ServiceImplementation) ListUsers(ctx context.Context, page, pageSize int) ([]User, *common.Pagination, error) {
	users, total, err := s.repo.List(ctx, common.PageOffset(page, pageSize), pageSize)
	if err != nil {
		return nil, nil, err
	}
	return users, common.NewPagination(total, page, pageSize), nil
}

// SetRoles replaces the role list of a user.
func (s *ServiceImplementation) SetRoles(ctx context.Context, id string, roles []string) (*User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dedup := common.StringList{}
	for _, r := range roles {
		if !dedup.Contains(r) {
			dedup = append(dedup, r)
		}
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"roles": dedup}); err != nil {
		return nil, err
	}
	dbUser.Roles = dedup
	s.logger.Info("User roles updated", zap.String("userID", id), zap.Strings("roles", dedup))
	return dbUser, nil
}

func (s *ServiceImplementation) initialRoles(uid string) common.StringList {
	roles := common.StringList{}
	if s.isBootstrapAdmin(uid) {
		roles = append(roles, common.RoleAdmin)
	}
	return roles
}

func (s *ServiceImplementation) isBootstrapAdmin(uid string) bool {
	if s.cfg == nil {
		return false
	}
	for _, id := range s.cfg.AdminUserIDs {
		if id == uid {
			return true
		}
	}
	return false
}

func claimString(claims map[string]interface{}, key string) string {
	if claims == nil {
		return ""
	}
	v, _ := claims[key].(string)
	return v
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
