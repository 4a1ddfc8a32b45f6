package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/core/auth"
	resp "tienda-api/internal/transport/http/response"
)

const KeyClaims = "claims"

const (
	MsgTokenMissing   = "No se proporcionó un token de autenticación"
	MsgTokenMalformed = "Formato de token inválido"
	MsgTokenInvalid   = "Token inválido o expirado"
)

// AuthJWT 缺少头 / 格式错误 → 403；令牌无效或过期 → 401
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := strings.TrimSpace(c.GetHeader("Authorization"))
		if ah == "" {
			resp.Abort(c, http.StatusForbidden, MsgTokenMissing)
			return
		}
		parts := strings.Fields(ah)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			resp.Abort(c, http.StatusForbidden, MsgTokenMalformed)
			return
		}
		claims, err := j.Parse(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.Header("WWW-Authenticate", `Bearer error="invalid_token", error_description="expired"`)
			}
			resp.Abort(c, http.StatusUnauthorized, MsgTokenInvalid)
			return
		}
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// ClaimsFrom 取 AuthJWT 写入的声明
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
