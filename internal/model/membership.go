package model

const MembershipTableName = "memberships"

// Membership 用户与项目之间的成员关系
// 邀请阶段 UserID 为空, 以 Email+Token 标识; 接受邀请后写入 UserID 并清空 Token。
// 同一 (project, user) 至多一条已确认的成员关系。
type Membership struct {
	BaseModel
	ProjectID   int64   `gorm:"not null;uniqueIndex:idx_membership_project_user;index" json:"project_id"`
	UserID      *int64  `gorm:"uniqueIndex:idx_membership_project_user" json:"user_id"`
	RoleID      int64   `gorm:"not null" json:"role_id"`
	IsAdmin     bool    `gorm:"not null;default:false" json:"is_admin"`
	Email       *string `gorm:"size:255;index" json:"email,omitempty"` // 邀请邮箱, 未接受前有效
	Token       *string `gorm:"size:60;uniqueIndex" json:"-"`          // 邀请token
	InvitedByID *int64  `json:"invited_by_id,omitempty"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role    *Role    `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (Membership) TableName() string {
	return MembershipTableName
}

// IsConfirmed 是否已确认（被邀请人已接受）
func (m *Membership) IsConfirmed() bool {
	return m.UserID != nil
}
