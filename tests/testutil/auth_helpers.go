package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims carrying the given role
func MockValidatedClaims(subject, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Role: role,
		},
	}
}

// MockAuthMiddleware returns a gin middleware that simulates a validated JWT
// for the given identity, the way middleware.EnsureValidToken would populate
// the context after a successful check.
func MockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", "mock-token")
		c.Set("validated_claims", MockValidatedClaims(auth0ID, role))
		c.Next()
	}
}
