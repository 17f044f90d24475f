package middleware

import (
	"strings"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AdminRole    = "admin"
	RoleClaimKey = "role"
	RoleLocalKey = "Role"
)

// RequireAdmin validates an HMAC-signed bearer token and requires the
// admin role claim. Game generation and track ingestion are the only
// authenticated surfaces; play itself is anonymous.
func (m *Middleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.Context()).Function("RequireAdmin")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			log.Info("invalid authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(
			tokenParts[1],
			claims,
			func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(m.Config.AuthJWTSecret), nil
			},
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		)
		if err != nil || !token.Valid {
			log.Info("token validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		role, _ := claims[RoleClaimKey].(string)
		if role != AdminRole {
			log.Info("token lacks admin role", "role", role)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		c.Locals(RoleLocalKey, role)
		return c.Next()
	}
}

// GetRole extracts the authenticated role from Fiber context.
func GetRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(RoleLocalKey).(string); ok {
		return role
	}
	return ""
}
