package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"salesledger/internal/config"
	"salesledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	ownerIDKey = "ownerID"
)

var errMissingToken = errors.New("authorization is missing")

// ParseAccessToken validates an HS256 access token and returns its subject
func ParseAccessToken(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	ownerID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errors.New("invalid token subject")
	}
	return ownerID, nil
}

// tokenFromRequest reads the access token cookie, falling back to the
// Authorization header
func tokenFromRequest(c *gin.Context) (string, error) {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// RequireAuth rejects requests without a valid access token and stores the
// token's owner for handlers
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		ownerID, err := ParseAccessToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		c.Set(ownerIDKey, ownerID)
		c.Next()
	}
}

// OwnerID returns the authenticated owner set by RequireAuth
func OwnerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ownerIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, cfg config.JWTConfig, accessToken, refreshToken string) {
	sameSite, secure := cookiePolicy(cfg)
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, accessToken, int(cfg.AccessTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, int(cfg.RefreshTokenTTL.Seconds()), "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context, cfg config.JWTConfig) {
	sameSite, secure := cookiePolicy(cfg)
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

// Cross-origin deployments need SameSite=None, which browsers only accept
// together with Secure.
func cookiePolicy(cfg config.JWTConfig) (http.SameSite, bool) {
	if cfg.SecureCookies {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}
