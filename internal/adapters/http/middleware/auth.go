package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/example/profile-service/internal/usecase"
	res "github.com/example/profile-service/pkg/http"
)

const (
	callerIDKey = "auth.caller_id"
	usernameKey = "auth.username"
)

type AuthMiddleware struct {
	signer usecase.JWTSigner
}

func NewAuthMiddleware(signer usecase.JWTSigner) *AuthMiddleware {
	return &AuthMiddleware{signer: signer}
}

// Handler authenticates the bearer token and attaches the verified caller id
// to the request context. Handlers read it back through UserID; nothing
// downstream touches the raw token.
func (m *AuthMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing token", requestIDFromCtx(c), nil)
		}
		tok, claims, err := m.signer.Parse(parts[1])
		if err != nil || tok == nil || !tok.Valid {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "invalid token", requestIDFromCtx(c), nil)
		}
		sub, _ := claims["sub"].(string)
		username, _ := claims["username"].(string)
		if sub == "" {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "subject missing", requestIDFromCtx(c), nil)
		}
		c.Set(callerIDKey, sub)
		c.Set(usernameKey, username)
		return next(c)
	}
}

// UserID returns the authenticated caller id set by Handler.
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(callerIDKey).(string)
	return id, ok && id != ""
}

// Username returns the authenticated caller's username, if the token carried one.
func Username(c echo.Context) (string, bool) {
	name, ok := c.Get(usernameKey).(string)
	return name, ok && name != ""
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
