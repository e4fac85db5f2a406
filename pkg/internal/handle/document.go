package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docdrop/pkg/configs"
	"github.com/yeisme/docdrop/pkg/internal/service"
)

// ViewDocument 按令牌展示文档页，持有链接即可访问.
func ViewDocument(c *gin.Context) {
	token := c.Param("token")
	svc := service.NewDocumentService(c.Request.Context())

	info, err := svc.FindByToken(c.Request.Context(), token)
	if err != nil {
		renderError(c, err)

		return
	}

	c.HTML(http.StatusOK, "document.html", gin.H{
		"Name":      info.Name,
		"CreatedAt": info.CreatedAt,
		"FileURL":   "/uploads/" + info.FilePath,
	})
}

// QRCodePage 登记确认页：展示二维码与访问链接.
func QRCodePage(c *gin.Context) {
	token := c.Param("token")
	svc := service.NewDocumentService(c.Request.Context())

	info, err := svc.FindByToken(c.Request.Context(), token)
	if err != nil {
		renderError(c, err)

		return
	}

	qrName, err := svc.EnsureQRCode(c.Request.Context(), token)
	if err != nil {
		renderError(c, err)

		return
	}

	c.HTML(http.StatusOK, "qr.html", gin.H{
		"Name":      info.Name,
		"QRPath":    "/qrcodes/" + qrName,
		"AccessURL": service.AccessURL(configs.GetConfig().Store.ExternalBase, info.Token),
	})
}
