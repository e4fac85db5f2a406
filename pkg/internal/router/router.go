// Package router 管理路由配置，只负责将路径和处理器绑定到 gin 引擎，
// 处理器的实现由 pkg/internal/handle 提供.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docdrop/pkg/internal/handle"
)

// RegisterPageRoutes 注册页面路由.
//
//	GET  /          -> 首页（登记表单 + 用户列表）
//	POST /register  -> 登记并生成二维码
//	GET  /qr/:token -> 登记确认页
//	GET  /d/:token  -> 按令牌访问文档
func RegisterPageRoutes(g *gin.RouterGroup) {
	g.GET("/", handle.Index)
	g.POST("/register", handle.Register)
	g.GET("/qr/:token", handle.QRCodePage)
	g.GET("/d/:token", handle.ViewDocument)
}
