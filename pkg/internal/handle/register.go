package handle

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docdrop/pkg/internal/service"
	"github.com/yeisme/docdrop/pkg/internal/types"
	"github.com/yeisme/docdrop/pkg/log"
)

// documentField multipart 表单中的文档字段名.
const documentField = "document"

// Register 处理登记表单：保存文档、创建记录、跳转到二维码页.
func Register(c *gin.Context) {
	l := log.Logger()

	var req types.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request")
		renderRegisterError(c, fmt.Errorf("%w: %s", service.ErrValidation, err.Error()))

		return
	}

	fileHeader, err := c.FormFile(documentField)
	if err != nil {
		l.Warn().Err(err).Msg("missing document file")
		renderRegisterError(c, fmt.Errorf("%w: document file is required", service.ErrValidation))

		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		renderRegisterError(c, fmt.Errorf("%w: %s", service.ErrStorage, err.Error()))

		return
	}
	defer file.Close()

	svc := service.NewRegistrationService(c.Request.Context())

	res, err := svc.Register(c.Request.Context(), &req, file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		renderRegisterError(c, err)

		return
	}

	// POST 后重定向，避免刷新重复登记
	c.Redirect(http.StatusSeeOther, "/qr/"+res.Token)
}
