// Package model 定义数据库模型.
package model

import (
	"time"
)

// User 用户登记模型：一条记录对应一次登记与一份上传文档.
// 表为追加式，记录创建后不修改不删除，token 一经落库不再变更.
type User struct {
	ID   uint   `gorm:"primaryKey"       json:"id"`
	Name string `gorm:"size:128;not null" json:"name"`
	// Email 可选，允许重复登记同一邮箱
	Email string `gorm:"size:255" json:"email,omitempty"`
	// FilePath 存储目录下的文件名，不含目录前缀
	FilePath string `gorm:"size:512;not null" json:"file_path"`
	// Token 文档访问令牌，唯一索引兜底碰撞
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名.
func (User) TableName() string {
	return "users"
}
