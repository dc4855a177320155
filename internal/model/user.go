package model

import "time"

const UserTableName = "users"

// User 本地用户模型
type User struct {
	BaseModel
	AuthProvider string     `gorm:"size:20;not null;default:local;uniqueIndex:idx_user_provider_name" json:"auth_provider"`
	Username     string     `gorm:"size:50;not null;uniqueIndex:idx_user_provider_name" json:"username"`
	Password     string     `gorm:"size:255" json:"-"` // 不返回到前端；LDAP 用户可为空字符串
	Email        *string    `gorm:"size:100" json:"email,omitempty"`
	DisplayName  *string    `gorm:"size:100" json:"display_name,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return UserTableName
}
