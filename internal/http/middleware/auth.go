package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomcast/roomcast/internal/model"
)

// HashPassword bcrypt-hashes an operator's plaintext password for
// storage.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GetCurrentUser returns the operator that JWTMiddleware resolved for
// this request. The second return is false on unauthenticated routes.
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	u, exists := c.Get(operatorContextKey)
	if !exists {
		return nil, false
	}
	operator, ok := u.(*model.User)
	return operator, ok
}
