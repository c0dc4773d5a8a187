package api

import (
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionLocalKey = "session"

// Claims токен фронтенда: sub - id пользователя, role - роль в приложении
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware проверяет bearer токен и кладёт *model.Session в locals
func AuthMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return writeUnauthenticated(c, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return writeUnauthenticated(c, "Invalid authorization header format")
		}

		session, err := ParseToken(parts[1], secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return writeUnauthenticated(c, "Token has expired")
			}
			return writeUnauthenticated(c, "Invalid token")
		}

		c.Locals(sessionLocalKey, session)
		return c.Next()
	}
}

// ParseToken проверяет подпись HS256 и извлекает сессию
func ParseToken(tokenString string, secret []byte) (*model.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, jwt.ErrTokenInvalidSubject
	}

	session := &model.Session{UserID: userID, Role: model.Role(claims.Role)}
	if !session.Authenticated() {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return session, nil
}

// SignToken выпускает токен для сессии, используется в тестах и локальной отладке
func SignToken(session *model.Session, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func sessionFrom(c *fiber.Ctx) *model.Session {
	session, _ := c.Locals(sessionLocalKey).(*model.Session)
	return session
}

// RequestLogger пишет в лог каждый запрос
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		if session := sessionFrom(c); session != nil {
			fields = append(fields, zap.String("user_id", session.UserID.String()))
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("HTTP request", fields...)
		} else {
			logger.Info("HTTP request", fields...)
		}

		return err
	}
}
