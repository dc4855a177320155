package errors

import "fmt"

// 错误码
const (
	CodeSuccess         = 200
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInternalError   = 500
	CodeDatabaseError   = 501
	CodeAuthError       = 502
	CodeValidationError = 503
	CodeQuotaExceeded   = 510
	CodeBadReplacement  = 511
	CodeStaleWrite      = 512
	CodeTemplateUnknown = 513
	CodeBlocked         = 514
	CodeWrongProject    = 515
)

// QuotaReason 配额拒绝原因
type QuotaReason string

const (
	ReasonPublicProjectsExceeded     QuotaReason = "PUBLIC_PROJECTS_EXCEEDED"
	ReasonPrivateProjectsExceeded    QuotaReason = "PRIVATE_PROJECTS_EXCEEDED"
	ReasonPublicMembershipsExceeded  QuotaReason = "PUBLIC_MEMBERSHIPS_EXCEEDED"
	ReasonPrivateMembershipsExceeded QuotaReason = "PRIVATE_MEMBERSHIPS_EXCEEDED"
	ReasonOwnerless                  QuotaReason = "OWNERLESS"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`  // 校验错误对应的字段
	Reason  string `json:"reason,omitempty"` // 配额拒绝原因
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidation 创建字段校验错误
func NewValidation(field, message string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: message,
		Field:   field,
	}
}

// NewQuotaExceeded 创建配额错误
func NewQuotaExceeded(reason QuotaReason) *AppError {
	return &AppError{
		Code:    CodeQuotaExceeded,
		Message: "超出配额限制",
		Reason:  string(reason),
	}
}

// IsCode 判断错误是否携带指定错误码
func IsCode(err error, code int) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// 预定义错误
var (
	ErrBadRequest       = New(CodeBadRequest, "请求参数错误")
	ErrUnauthorized     = New(CodeUnauthorized, "未授权")
	ErrPermissionDenied = New(CodeForbidden, "没有操作权限")
	ErrNotFound         = New(CodeNotFound, "资源不存在")
	ErrConflict         = New(CodeConflict, "资源冲突")
	ErrInternalError    = New(CodeInternalError, "内部服务器错误")
	ErrDatabaseError    = New(CodeDatabaseError, "数据库错误")
	ErrAuthError        = New(CodeAuthError, "认证失败")
	ErrValidationError  = New(CodeValidationError, "数据验证失败")

	// 具体业务错误
	ErrInvalidCredentials = New(CodeAuthError, "用户名或密码错误")
	ErrInvalidToken       = New(CodeUnauthorized, "无效的Token")
	ErrTokenExpired       = New(CodeUnauthorized, "Token已过期")
	ErrUserNotFound       = New(CodeNotFound, "用户不存在")
	ErrRecordNotFound     = New(CodeNotFound, "记录不存在")
	ErrRecordExists       = New(CodeConflict, "记录已存在")

	ErrNameConflict    = New(CodeConflict, "名称已被占用")
	ErrBadReplacement  = New(CodeBadReplacement, "替换项无效")
	ErrStaleWrite      = New(CodeStaleWrite, "版本冲突, 数据已被其他人修改")
	ErrTemplateUnknown = New(CodeTemplateUnknown, "项目模板不存在")
	ErrBlocked         = New(CodeBlocked, "项目已被锁定, 仅允许读操作")
	ErrWrongProject    = New(CodeWrongProject, "目标不属于当前项目")
)
