package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/Niaj-FreshNet/khushbuwaala-sub001/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey = "session_id" // string

	sessionCookieName = "kb_session"
	sessionTTL        = 30 * 24 * time.Hour
)

// 匿名ショッパーのセッションID（署名付きcookie）。
// 無い・壊れている場合は新しいIDを発行してcookieを貼り直す。
// ログインは無く、セッションIDはカートのキーにだけ使う。
func Session(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""

			if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				if parsed, err := parseSessionToken(cookie.Value, cfg.SessionSecret); err == nil {
					sid = parsed
				}
			}

			if sid == "" {
				sid = uuid.NewString()

				signed, err := signSessionToken(sid, cfg.SessionSecret)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
				}

				c.SetCookie(&http.Cookie{
					Name:     sessionCookieName,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(sessionTTL.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   cfg.GoEnv == "prod",
				})
			}

			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

func signSessionToken(sid string, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

func parseSessionToken(raw string, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("invalid sid")
	}
	return sid, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
