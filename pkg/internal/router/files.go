package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docdrop/pkg/internal/handle"
)

// RegisterFileRoutes 注册文件直出路由.
func RegisterFileRoutes(g *gin.RouterGroup) {
	g.GET("/uploads/:filename", handle.ServeUpload)
	g.GET("/qrcodes/:filename", handle.ServeQRCode)
}
