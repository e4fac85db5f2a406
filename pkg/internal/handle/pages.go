package handle

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docdrop/pkg/configs"
	"github.com/yeisme/docdrop/pkg/internal/service"
)

// indexData 组装首页渲染数据：登记表单参数与用户列表.
func indexData(c *gin.Context) (gin.H, error) {
	svc := service.NewDocumentService(c.Request.Context())

	users, err := svc.ListUsers(c.Request.Context())
	if err != nil {
		return nil, err
	}

	storeCfg := configs.GetConfig().Store

	return gin.H{
		"Users":       users,
		"MaxUploadMB": storeCfg.MaxUploadMB,
		"AllowedExts": strings.Join(storeCfg.AllowedExts, " / "),
	}, nil
}

// Index 首页：登记表单与已登记用户列表.
func Index(c *gin.Context) {
	data, err := indexData(c)
	if err != nil {
		renderError(c, err)

		return
	}

	c.HTML(http.StatusOK, "index.html", data)
}
