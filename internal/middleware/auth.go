package middleware

import (
	"context"
	"strings"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// accessTokenQueryParam carries the bearer token on websocket upgrades, where
// browsers cannot set headers.
const accessTokenQueryParam = "access_token"

// TokenVerifier verifies identity provider ID tokens. *firebase.FirebaseService satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// AuthMiddleware requires a valid bearer token. The local user row is provisioned
// from the token claims and a common.Principal is stored on the context.
func AuthMiddleware(verifier TokenVerifier, users shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, apiErr := extractBearerToken(c)
		if apiErr != nil {
			logger.Debug("Rejecting unauthenticated request", zap.String("path", c.Request.URL.Path), zap.Any("reason", apiErr.Details))
			common.RespondWithError(c, apiErr)
			return
		}

		principal, err := authenticate(c.Request.Context(), verifier, users, tokenString, logger)
		if err != nil {
			common.RespondWithError(c, err)
			return
		}
		common.SetPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier, users shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, apiErr := extractBearerToken(c)
		if apiErr == nil {
			principal, err := authenticate(c.Request.Context(), verifier, users, tokenString, logger)
			if err == nil {
				common.SetPrincipal(c, principal)
			} else {
				logger.Debug("Ignoring invalid optional token", zap.Error(err))
			}
		}
		c.Next()
	}
}

// RequireRole rejects principals that carry none of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := common.GetPrincipal(c)
		if !ok {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authentication is required."))
			return
		}
		if !principal.HasRole(roles...) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, *common.APIError) {
	authHeader := c.GetHeader(common.AuthorizationHeader)
	if authHeader == "" {
		if isWebSocketUpgrade(c) {
			if token := c.Query(accessTokenQueryParam); token != "" {
				return token, nil
			}
		}
		return "", common.ErrUnauthorized.WithDetails("Authorization header is required.")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.AuthorizationTypeBearer) {
		return "", common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'.")
	}
	return parts[1], nil
}

func authenticate(ctx context.Context, verifier TokenVerifier, users shared.Service, tokenString string, logger *zap.Logger) (common.Principal, error) {
	token, err := verifier.VerifyIDToken(ctx, tokenString)
	if err != nil {
		logger.Warn("Firebase token verification failed", zap.Error(err))
		return common.Principal{}, common.ErrUnauthorized.WithDetails("Invalid or expired token.")
	}

	usr, _, err := users.GetOrCreateUserFromFirebaseClaims(ctx, token)
	if err != nil {
		logger.Error("Failed to provision user from token", zap.Error(err), zap.String("uid", token.UID))
		return common.Principal{}, err
	}

	principal := common.Principal{ID: usr.ID, Roles: usr.Roles}
	if usr.Email != nil {
		principal.Email = *usr.Email
	}
	if usr.DisplayName != nil {
		principal.DisplayName = *usr.DisplayName
	}
	if usr.ProfileImageURL != nil {
		principal.PhotoURL = *usr.ProfileImageURL
	}
	if principal.Roles == nil {
		principal.Roles = []string{}
	}
	return principal, nil
}

func isWebSocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
