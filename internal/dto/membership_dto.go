package dto

// CreateMembershipRequest 添加成员/发出邀请请求。
// user_id 和 email 二选一: 传 user_id 直接入组, 传 email 生成待接受邀请。
type CreateMembershipRequest struct {
	UserID  *int64 `json:"user_id"`
	Email   string `json:"email" binding:"omitempty,email"`
	RoleID  int64  `json:"role_id" binding:"required,min=1"`
	IsAdmin bool   `json:"is_admin"`
}

// UpdateMembershipRequest 更新成员请求
type UpdateMembershipRequest struct {
	RoleID  *int64 `json:"role_id" binding:"omitempty,min=1"`
	IsAdmin *bool  `json:"is_admin"`
}

// AcceptInvitationRequest 接受邀请请求
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// MembershipResponse 成员响应
type MembershipResponse struct {
	ID        int64   `json:"id"`
	ProjectID int64   `json:"project_id"`
	UserID    *int64  `json:"user_id"`
	RoleID    int64   `json:"role_id"`
	RoleName  string  `json:"role_name,omitempty"`
	IsAdmin   bool    `json:"is_admin"`
	Email     *string `json:"email,omitempty"`
	Username  string  `json:"username,omitempty"`
	Confirmed bool    `json:"confirmed"`
	CreatedAt string  `json:"created_at"`
}
