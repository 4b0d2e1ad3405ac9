package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver map[string]*moderation.Actor

func (s stubResolver) ResolveActor(_ context.Context, token string) (*moderation.Actor, error) {
	if token == "boom" {
		return nil, errors.New("redis down")
	}
	actor, ok := s[token]
	if !ok {
		return nil, moderation.ErrUnauthenticated
	}
	return actor, nil
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			c.JSON(http.StatusOK, gin.H{"id": 0})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID})
	})
	return r
}

func get(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	resolver := stubResolver{"good": {ID: 10, Role: moderation.RoleNeighbor}}
	r := authRouter(RequireAuth(resolver))

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"good", http.StatusUnauthorized},
		{"Basic good", http.StatusUnauthorized},
		{"Bearer ", http.StatusUnauthorized},
		{"Bearer stale", http.StatusUnauthorized},
		{"Bearer boom", http.StatusInternalServerError},
		{"Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		w := get(r, "/", tc.header)
		assert.Equal(t, tc.status, w.Code, tc.header)
	}
	assert.JSONEq(t, `{"id":10}`, get(r, "/", "Bearer good").Body.String())
}

func TestOptionalAuth(t *testing.T) {
	resolver := stubResolver{"good": {ID: 10, Role: moderation.RoleNeighbor}}
	r := authRouter(OptionalAuth(resolver))

	w := get(r, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0}`, w.Body.String())

	// 带了无效 token 不降级为匿名
	assert.Equal(t, http.StatusUnauthorized, get(r, "/", "Bearer stale").Code)
	assert.JSONEq(t, `{"id":10}`, get(r, "/", "Bearer good").Body.String())
}

type stubTenants map[string]*model.Community

func (s stubTenants) Resolve(_ context.Context, slug string) (*model.Community, error) {
	if slug == "boom" {
		return nil, errors.New("db down")
	}
	c, ok := s[slug]
	if !ok {
		return nil, moderation.ErrNotFound
	}
	return c, nil
}

func TestTenant(t *testing.T) {
	r := gin.New()
	r.GET("/communities/:community/ping", Tenant(stubTenants{"la-candelaria": {ID: 3, Slug: "la-candelaria"}}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"community_id": CommunityID(c)})
	})

	w := get(r, "/communities/la-candelaria/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"community_id":3}`, w.Body.String())

	w = get(r, "/communities/chapinero/ping", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"msg":"Recurso no encontrado"}`, w.Body.String())

	assert.Equal(t, http.StatusInternalServerError, get(r, "/communities/boom/ping", "").Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestIDKey))
	})

	w := get(r, "/ping", "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, http.StatusNotFound, get(r, "/missing", "").Code)
}
