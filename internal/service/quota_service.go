package service

import (
	"agile-pm/internal/model"
	"agile-pm/internal/pkg/config"
	"agile-pm/internal/repository"
	pkgErrors "agile-pm/pkg/errors"
)

// CheckResult 配额检查结果
type CheckResult struct {
	Allowed            bool                  `json:"allowed"`
	Reason             pkgErrors.QuotaReason `json:"reason,omitempty"`
	CurrentMemberships int                   `json:"current_memberships"`
}

// QuotaService 配额治理
// 四项可配置上限: 公开/私有项目数, 公开/私有项目的成员总数。nil 表示不限制。
type QuotaService interface {
	CheckCreate(ownerID int64, isPrivate bool) (*CheckResult, error)
	CheckPrivacyFlip(project *model.Project) (*CheckResult, error)
	CheckTransfer(project *model.Project, newOwnerID int64) (*CheckResult, error)
	CheckDuplicate(newOwnerID int64, isPrivate bool, newMemberIDs []int64) (*CheckResult, error)
	// CheckAddMember 向既有项目添加成员/发出邀请
	CheckAddMember(project *model.Project) (*CheckResult, error)

	// Enforce 把拒绝结果转为 QuotaExceeded 错误
	Enforce(result *CheckResult) error
}

type quotaService struct {
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
}

func NewQuotaService(projectRepo repository.ProjectRepository, membershipRepo repository.MembershipRepository) QuotaService {
	return &quotaService{
		projectRepo:    projectRepo,
		membershipRepo: membershipRepo,
	}
}

func (s *quotaService) CheckCreate(ownerID int64, isPrivate bool) (*CheckResult, error) {
	// 新项目自带一个成员(所有者), 与其名下已有成员按用户并集去重
	return s.check(ownerID, isPrivate, 0, nil, []int64{ownerID}, 0)
}

func (s *quotaService) CheckPrivacyFlip(project *model.Project) (*CheckResult, error) {
	if project.OwnerID == nil {
		return &CheckResult{Allowed: false, Reason: pkgErrors.ReasonOwnerless}, nil
	}

	// 目标私密性与当前相反, 按反转后的口径计数
	targetPrivate := !project.IsPrivate
	return s.check(*project.OwnerID, targetPrivate, project.ID, []int64{project.ID}, nil, 0)
}

func (s *quotaService) CheckTransfer(project *model.Project, newOwnerID int64) (*CheckResult, error) {
	return s.check(newOwnerID, project.IsPrivate, project.ID, []int64{project.ID}, nil, 0)
}

func (s *quotaService) CheckAddMember(project *model.Project) (*CheckResult, error) {
	if project.OwnerID == nil {
		return &CheckResult{Allowed: false, Reason: pkgErrors.ReasonOwnerless}, nil
	}
	return s.check(*project.OwnerID, project.IsPrivate, project.ID, []int64{project.ID}, nil, 1)
}

func (s *quotaService) CheckDuplicate(newOwnerID int64, isPrivate bool, newMemberIDs []int64) (*CheckResult, error) {
	// 新所有者 ∪ 请求带入的成员, 与其名下已有成员并集去重
	candidates := append([]int64{newOwnerID}, newMemberIDs...)
	return s.check(newOwnerID, isPrivate, 0, nil, candidates, 0)
}

// check 统一口径: 候选所有者在目标私密性下的项目数+1 对比项目上限;
// 其名下同私密性项目的成员(去重的用户 ∪ 待接受邀请邮箱) ∪ extra 项目成员
// ∪ candidateUsers + pending 对比成员上限。已计入的用户不重复占席位;
// pending 只给身份未知的新席位(邮箱邀请)。excludeProjectID 把目标项目自身
// 从"名下项目"里剔除。
func (s *quotaService) check(ownerID int64, isPrivate bool, excludeProjectID int64, extraProjectIDs []int64, candidateUsers []int64, pending int) (*CheckResult, error) {
	projectLimit, membershipLimit := s.limits(isPrivate)

	count, err := s.projectRepo.CountByOwner(ownerID, isPrivate, excludeProjectID)
	if err != nil {
		return nil, err
	}
	if projectLimit != nil && count+1 > int64(*projectLimit) {
		return &CheckResult{Allowed: false, Reason: s.projectReason(isPrivate)}, nil
	}

	memberships, err := s.countMemberships(ownerID, isPrivate, excludeProjectID, extraProjectIDs, candidateUsers)
	if err != nil {
		return nil, err
	}
	memberships += pending

	if membershipLimit != nil && memberships > *membershipLimit {
		return &CheckResult{
			Allowed:            false,
			Reason:             s.membershipReason(isPrivate),
			CurrentMemberships: memberships,
		}, nil
	}

	return &CheckResult{Allowed: true, CurrentMemberships: memberships}, nil
}

// countMemberships 统计成员总数: 已确认成员按用户去重, 未接受邀请按邮箱去重,
// candidateUsers 并入用户集合(已是成员的候选人不额外占席位)
func (s *quotaService) countMemberships(ownerID int64, isPrivate bool, excludeProjectID int64, extraProjectIDs []int64, candidateUsers []int64) (int, error) {
	users := make(map[int64]struct{})
	emails := make(map[string]struct{})
	for _, userID := range candidateUsers {
		users[userID] = struct{}{}
	}

	projectIDs, err := s.projectRepo.ListOwnedIDs(ownerID, isPrivate, excludeProjectID)
	if err != nil {
		return 0, err
	}
	projectIDs = append(projectIDs, extraProjectIDs...)
	if len(projectIDs) == 0 {
		return len(users), nil
	}

	memberships, err := s.membershipRepo.ListByProjectIDs(projectIDs)
	if err != nil {
		return 0, err
	}

	for _, m := range memberships {
		switch {
		case m.UserID != nil:
			users[*m.UserID] = struct{}{}
		case m.Email != nil:
			emails[*m.Email] = struct{}{}
		}
	}
	return len(users) + len(emails), nil
}

func (s *quotaService) limits(isPrivate bool) (projectLimit, membershipLimit *int) {
	limits := config.GlobalConfig.Limits
	if isPrivate {
		return limits.MaxPrivateProjects, limits.MaxMembershipsPrivateProject
	}
	return limits.MaxPublicProjects, limits.MaxMembershipsPublicProjects
}

func (s *quotaService) projectReason(isPrivate bool) pkgErrors.QuotaReason {
	if isPrivate {
		return pkgErrors.ReasonPrivateProjectsExceeded
	}
	return pkgErrors.ReasonPublicProjectsExceeded
}

func (s *quotaService) membershipReason(isPrivate bool) pkgErrors.QuotaReason {
	if isPrivate {
		return pkgErrors.ReasonPrivateMembershipsExceeded
	}
	return pkgErrors.ReasonPublicMembershipsExceeded
}

func (s *quotaService) Enforce(result *CheckResult) error {
	if result.Allowed {
		return nil
	}
	return pkgErrors.NewQuotaExceeded(result.Reason)
}
