package handle

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/docdrop/pkg/context"
	"github.com/yeisme/docdrop/pkg/internal/service"
)

// ServeUpload 直接按存储文件名提供文档内容.
// 路径可枚举可分享，访问不校验令牌，部署方需知晓该暴露面.
func ServeUpload(c *gin.Context) {
	store := ctxPkg.GetUploadStore(c.Request.Context())
	if store == nil {
		renderError(c, service.ErrStorage)

		return
	}

	path, err := store.Resolve(c.Param("filename"))
	if err != nil {
		renderError(c, err)

		return
	}

	c.File(path)
}

// ServeQRCode 提供二维码图片.
func ServeQRCode(c *gin.Context) {
	store := ctxPkg.GetQRCodeStore(c.Request.Context())
	if store == nil {
		renderError(c, service.ErrStorage)

		return
	}

	path, err := store.Resolve(c.Param("filename"))
	if err != nil {
		renderError(c, err)

		return
	}

	c.File(path)
}
