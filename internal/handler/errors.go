package handler

import (
	"errors"
	"net/http"
	"strconv"

	"barriored/internal/moderation"
	"barriored/internal/service"

	"github.com/gin-gonic/gin"
)

// errorResponse 错误 -> 状态码和提示，5xx 不暴露内部信息
func errorResponse(err error) (int, gin.H) {
	var verr *moderation.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, gin.H{"msg": "Datos invalidos", "errors": verr.Fields}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"msg": "Credenciales invalidas"}
	case errors.Is(err, moderation.ErrUnauthenticated):
		return http.StatusUnauthorized, gin.H{"msg": "No autenticado"}
	case errors.Is(err, moderation.ErrForbidden):
		return http.StatusForbidden, gin.H{"msg": "No autorizado"}
	case errors.Is(err, moderation.ErrNotFound):
		return http.StatusNotFound, gin.H{"msg": "Recurso no encontrado"}
	case errors.Is(err, moderation.ErrIllegalTransition):
		return http.StatusConflict, gin.H{"msg": "Transicion de estado no permitida"}
	case errors.Is(err, moderation.ErrConflict):
		return http.StatusConflict, gin.H{"msg": "Recurso duplicado"}
	case errors.Is(err, service.ErrOTPInvalid):
		return http.StatusBadRequest, gin.H{"msg": "Codigo invalido o expirado"}
	case errors.Is(err, service.ErrOTPCooldown):
		return http.StatusTooManyRequests, gin.H{"msg": "Demasiadas solicitudes"}
	case errors.Is(err, service.ErrSessionIssue):
		return http.StatusInternalServerError, gin.H{"msg": "Error generando sesion"}
	}
	return http.StatusInternalServerError, gin.H{"msg": "Error interno, intenta mas tarde"}
}

// writeError 5xx 的原始错误挂到 gin 上下文，由访问日志统一记录
func writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

// pathID 非法 id 直接按不存在处理
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Recurso no encontrado"})
		return 0, false
	}
	return id, true
}

func readBody(c *gin.Context) ([]byte, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Datos invalidos", "errors": gin.H{"body": []string{"No se pudo leer el cuerpo"}}})
		return nil, false
	}
	return raw, true
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
