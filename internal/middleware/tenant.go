package middleware

import (
	"context"
	"errors"
	"net/http"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/gin-gonic/gin"
)

const ContextCommunityKey = "community"

type TenantResolver interface {
	Resolve(ctx context.Context, slug string) (*model.Community, error)
}

// Tenant 把路由里的 :community 解析成社区，后续所有查询都按它的 id 隔离
func Tenant(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		community, err := resolver.Resolve(c.Request.Context(), c.Param("community"))
		if err != nil {
			if errors.Is(err, moderation.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"msg": "Recurso no encontrado"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "Error interno, intenta mas tarde"})
			return
		}
		c.Set(ContextCommunityKey, community)
		c.Next()
	}
}

func CommunityFrom(c *gin.Context) *model.Community {
	v, _ := c.Get(ContextCommunityKey)
	community, _ := v.(*model.Community)
	return community
}

// CommunityID 路由外调用时为 0，不会匹配任何记录
func CommunityID(c *gin.Context) uint64 {
	if community := CommunityFrom(c); community != nil {
		return community.ID
	}
	return 0
}
