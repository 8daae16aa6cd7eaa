package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// PrincipalKey is the context key for the authenticated caller
	PrincipalKey = "principal"
	// LoggerKey is the context key for the request scoped logger
	LoggerKey = "logger"
)

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)
