package webserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func issueJWT(memberID uint64, identity string, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(memberID, 10),
		"identity": identity,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString(secret)
}

func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		sub, _ := claims["sub"].(string)
		memberID, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || memberID == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		identity, _ := claims["identity"].(string)
		c.Set("memberID", memberID)
		c.Set("identity", identity)
		c.Next()
	}
}

func memberID(c *gin.Context) uint64 {
	id, _ := c.Get("memberID")
	v, _ := id.(uint64)
	return v
}
