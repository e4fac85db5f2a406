package types

import "time"

// DocumentInfo 文档访问视图.
type DocumentInfo struct {
	Name      string    `json:"name"`
	FilePath  string    `json:"file_path"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListItem 首页用户列表项.
type UserListItem struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	AccessURL string    `json:"access_url"`
	CreatedAt time.Time `json:"created_at"`
}
