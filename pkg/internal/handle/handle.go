// Package handle 提供请求处理器的实现，将业务错误统一映射为 HTTP 响应.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docdrop/pkg/internal/service"
	"github.com/yeisme/docdrop/pkg/internal/storage/files"
	"github.com/yeisme/docdrop/pkg/log"
)

// statusOf 将哨兵错误映射为 HTTP 状态码与展示文案.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "提交的信息有误，请检查后重试"
	case errors.Is(err, files.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "不支持的文件类型，仅接受 PDF 与常见图片格式"
	case errors.Is(err, files.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "文件超出大小限制"
	case errors.Is(err, files.ErrNotExist), errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "未找到请求的内容"
	default:
		return http.StatusInternalServerError, "服务器内部错误，请稍后重试"
	}
}

// logError 按严重程度记录请求错误，5xx 记 error 级别.
func logError(c *gin.Context, status int, err error) {
	l := log.Logger()
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	} else {
		l.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("request rejected")
	}
}

// renderError 渲染错误提示页.
func renderError(c *gin.Context, err error) {
	status, msg := statusOf(err)
	logError(c, status, err)

	c.HTML(status, "message.html", gin.H{
		"Title":   http.StatusText(status),
		"Message": msg,
	})
}

// renderRegisterError 登记失败时带着错误信息重新渲染登记表单.
// 首页数据取不到时退回独立错误页.
func renderRegisterError(c *gin.Context, err error) {
	status, msg := statusOf(err)
	logError(c, status, err)

	data, derr := indexData(c)
	if derr != nil {
		c.HTML(status, "message.html", gin.H{
			"Title":   http.StatusText(status),
			"Message": msg,
		})

		return
	}

	data["Error"] = msg
	c.HTML(status, "index.html", data)
}
