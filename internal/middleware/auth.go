package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"barriored/internal/moderation"

	"github.com/gin-gonic/gin"
)

const ContextActorKey = "actor"

// ActorResolver 由 UserService 实现：校验 access token 并加载当前用户
type ActorResolver interface {
	ResolveActor(ctx context.Context, accessToken string) (*moderation.Actor, error)
}

// RequireAuth 必须登录
func RequireAuth(resolver ActorResolver) gin.HandlerFunc {
	return auth(resolver, true)
}

// OptionalAuth 带 token 就解析，不带按匿名处理；token 无效同样 401
func OptionalAuth(resolver ActorResolver) gin.HandlerFunc {
	return auth(resolver, false)
}

func auth(resolver ActorResolver, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No autenticado"})
				return
			}
			c.Set(ContextActorKey, moderation.Anonymous)
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No autenticado"})
			return
		}

		// redis 里的 token 不一致说明账号已在别处登录
		actor, err := resolver.ResolveActor(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, moderation.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No autenticado"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "Error interno, intenta mas tarde"})
			return
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

// ActorFrom 未经过鉴权中间件时返回匿名
func ActorFrom(c *gin.Context) *moderation.Actor {
	v, ok := c.Get(ContextActorKey)
	if !ok {
		return moderation.Anonymous
	}
	actor, _ := v.(*moderation.Actor)
	return actor
}
