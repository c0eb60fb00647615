package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/roomcast/roomcast/internal/db"
)

// operatorContextKey is where JWTMiddleware stores the authenticated
// *model.User for handlers further down the chain.
const operatorContextKey = "currentUser"

// sessionTTL bounds an admin console session. Displays don't use JWTs
// at all, so a long-lived token here only exposes the operator surface.
const sessionTTL = 72 * time.Hour

// GenerateJWT issues a signed session token for an operator account.
// The user id rides in the "sub" claim.
func GenerateJWT(userID int, secret string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// verifySessionToken checks the signature and expiry and extracts the
// operator id from the "sub" claim.
func verifySessionToken(raw, secret string) (int, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, errors.New("invalid sub claim")
	}
	return int(sub), nil
}

// JWTMiddleware guards the admin console routes. It expects
// "Authorization: Bearer <token>", resolves the operator from the
// database and stores them in the request context. A token whose user
// has since been deleted is rejected like any other bad token.
func JWTMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid auth header"})
			return
		}

		userID, err := verifySessionToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		operator, err := db.GetUserByID(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.Set(operatorContextKey, operator)
		c.Next()
	}
}
