package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/Behyna/notification-services/internal/constants"
	"github.com/Behyna/notification-services/internal/notification"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userKey = "user"

// Claims carries the authenticated user. Tokens are issued by the platform that
// owns the users; this service only verifies them.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (c *Claims) Receiver() notification.Receiver {
	return notification.Receiver{
		ID:          c.UserID,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		IsSuperuser: c.IsSuperuser,
	}
}

func GenerateToken(secret string, user notification.Receiver, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		IsSuperuser: user.IsSuperuser,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// JWTAuth rejects requests without a valid HS256 bearer token with 401.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !found || tokenString == "" {
			return unauthorized(c)
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.UserID == 0 {
			return unauthorized(c)
		}

		c.Locals(userKey, claims.Receiver())
		return c.Next()
	}
}

// User returns the receiver stored by JWTAuth.
func User(c *fiber.Ctx) (notification.Receiver, bool) {
	user, ok := c.Locals(userKey).(notification.Receiver)
	return user, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code":    constants.ErrCodeUnauthorized,
		"message": constants.GetErrorMessage(constants.ErrCodeUnauthorized),
	})
}
