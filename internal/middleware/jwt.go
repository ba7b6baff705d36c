package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/codecoach-api/internal/utils"
)

// Claims is the token payload accepted by the API. Only HMAC-signed tokens
// are honoured.
type Claims struct {
	UserID any    `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTProtected validates bearer tokens signed with secret and exposes the
// caller as the user_id and user_role locals.
func JWTProtected(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		scheme, tokenString, ok := strings.Cut(authorization, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		var claims Claims
		token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		if userID, ok := claims.userID(); ok {
			c.Locals("user_id", userID)
		}
		if role := strings.ToLower(strings.TrimSpace(claims.Role)); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func (c Claims) userID() (uint, bool) {
	switch v := c.UserID.(type) {
	case float64:
		if v > 0 {
			return uint(v), true
		}
	case string:
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil && parsed > 0 {
			return uint(parsed), true
		}
	}
	if parsed, err := strconv.ParseUint(c.Subject, 10, 64); err == nil && parsed > 0 {
		return uint(parsed), true
	}
	return 0, false
}
