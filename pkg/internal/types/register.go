package types

// RegisterRequest 用户登记表单，文档文件随 multipart 一同提交.
type RegisterRequest struct {
	Name  string `form:"name"  json:"name"  rule:"required,max=128"`     // 用户姓名
	Email string `form:"email" json:"email" rule:"omitempty,email,max=255"` // 可选邮箱
}

// RegisterResult 登记成功结果.
type RegisterResult struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	AccessURL string `json:"access_url"` // 文档访问链接，二维码编码的内容
	QRPath    string `json:"qr_path"`    // 二维码图片的相对访问路径
}
