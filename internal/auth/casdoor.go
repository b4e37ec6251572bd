package auth

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/nexlearn/campus-rewards/internal/config"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

// Context keys set by the middleware for downstream handlers.
const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextUserEmail = "user_email"
)

// Authenticator verifies Casdoor bearer tokens and enforces the institutional
// email-domain restriction at the boundary.
type Authenticator struct {
	client *casdoorsdk.Client
	repo   repositories.Repository
	logger utils.Logger

	allowedDomain    string
	masterAdminEmail string
}

func NewAuthenticator(cfg *config.Config, repo repositories.Repository, logger utils.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &Authenticator{
		client:           client,
		repo:             repo,
		logger:           logger,
		allowedDomain:    strings.ToLower(cfg.AllowedEmailDomain),
		masterAdminEmail: strings.ToLower(cfg.MasterAdminEmail),
	}
}

// emailAllowed applies the domain restriction. The designated master admin
// identity bypasses the suffix check.
func (a *Authenticator) emailAllowed(email string) bool {
	lower := strings.ToLower(email)
	if a.masterAdminEmail != "" && lower == a.masterAdminEmail {
		return true
	}
	return strings.HasSuffix(lower, a.allowedDomain)
}

// Middleware authenticates the request and resolves the local user record.
// The local role, not anything inside the token, drives authorization.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		claims, err := a.client.ParseJwtToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.logger.Warn("Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		if !a.emailAllowed(claims.User.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Email domain not permitted"})
			return
		}

		user, err := a.repo.Users().GetByEmail(c.Request.Context(), claims.User.Email)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "User not provisioned"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to resolve user"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Account disabled"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUserEmail, user.Email)
		c.Next()
	}
}

// RequireRoles restricts a route group to the given roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}
		if _, ok := allowed[role.(models.UserRole)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient role"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID from the Gin context.
func CurrentUserID(c *gin.Context) string {
	if id, ok := c.Get(ContextUserID); ok {
		return id.(string)
	}
	return ""
}

// CurrentUserRole returns the authenticated user's role from the Gin context.
func CurrentUserRole(c *gin.Context) models.UserRole {
	if role, ok := c.Get(ContextUserRole); ok {
		return role.(models.UserRole)
	}
	return ""
}
