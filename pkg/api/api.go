// Package api 将全部路由组注册到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docdrop/pkg/internal/router"
)

// RegisterGroup 注册页面、文件直出与健康检查路由到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	root := e.Group("")

	router.RegisterPageRoutes(root)
	router.RegisterFileRoutes(root)
	router.RegisterHealthCheckRoute(root)

	return e
}
