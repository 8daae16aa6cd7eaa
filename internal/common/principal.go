package common

import (
	"github.com/gin-gonic/gin"
)

// Principal is the verified caller of a request. It is built once by the auth
// middleware and handed to handlers by value.
type Principal struct {
	ID          string   `json:"id"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	Roles       []string `json:"roles"`
}

// HasRole reports whether the principal carries any of the given roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// GetPrincipal returns the principal stored by the auth middleware.
// ok is false on routes that ran without authentication.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	val, exists := c.Get(PrincipalKey)
	if !exists {
		return Principal{}, false
	}
	p, ok := val.(Principal)
	if !ok || p.ID == "" {
		return Principal{}, false
	}
	return p, true
}

// SetPrincipal stores the principal on the gin context.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(PrincipalKey, p)
}
