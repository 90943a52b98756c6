package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"ops-panel/internal/api/middleware"
	"ops-panel/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetPermissions 提取当前用户权限列表，未注入时返回空
func GetPermissions(c *gin.Context) []string {
	v, exists := c.Get(middleware.ContextPermissions)
	if !exists {
		return nil
	}
	perms, _ := v.([]string)
	return perms
}

// getTokenInfo 提取当前 Token 的 jti 与过期时间
func getTokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextTokenID)
	exp, _ := c.Get(middleware.ContextTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// bindJSON 绑定请求体；超出大小限制返回 413，其余返回 400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, 413, 10005, "请求体过大")
			return false
		}
		response.BadRequest(c, 10001, "参数校验失败")
		return false
	}
	return true
}

// bindQuery 绑定查询参数
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return false
	}
	return true
}
