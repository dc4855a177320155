package service

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"agile-pm/internal/core"
	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
	"agile-pm/pkg/utils"
)

type MembershipService interface {
	// Create 传user_id直接入组, 传email生成待接受的邀请(带token)
	Create(projectID, inviterID int64, req *dto.CreateMembershipRequest) (*dto.MembershipResponse, error)
	List(projectID int64) ([]*dto.MembershipResponse, error)
	Update(projectID, id int64, req *dto.UpdateMembershipRequest) (*dto.MembershipResponse, error)
	Delete(projectID, id int64) error
	// AcceptInvitation 通过token接受邀请: 写入用户并清掉邀请痕迹
	AcceptInvitation(userID int64, req *dto.AcceptInvitationRequest) (*dto.MembershipResponse, error)
}

type membershipService struct {
	db             *gorm.DB
	membershipRepo repository.MembershipRepository
	projectRepo    repository.ProjectRepository
	taxonomyRepo   repository.TaxonomyRepository
	userRepo       repository.UserRepository
	quotaService   QuotaService
	bus            *core.Bus
}

func NewMembershipService(
	db *gorm.DB,
	membershipRepo repository.MembershipRepository,
	projectRepo repository.ProjectRepository,
	taxonomyRepo repository.TaxonomyRepository,
	userRepo repository.UserRepository,
	quotaService QuotaService,
	bus *core.Bus,
) MembershipService {
	return &membershipService{
		db:             db,
		membershipRepo: membershipRepo,
		projectRepo:    projectRepo,
		taxonomyRepo:   taxonomyRepo,
		userRepo:       userRepo,
		quotaService:   quotaService,
		bus:            bus,
	}
}

func (s *membershipService) Create(projectID, inviterID int64, req *dto.CreateMembershipRequest) (*dto.MembershipResponse, error) {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if req.UserID == nil && strings.TrimSpace(req.Email) == "" {
		return nil, pkgErrors.NewValidation("user_id", "user_id 与 email 必须二选一")
	}
	if err := checkCatalogRow(s.taxonomyRepo, constants.KindRole, req.RoleID, projectID); err != nil {
		return nil, err
	}

	result, err := s.quotaService.CheckAddMember(project)
	if err != nil {
		return nil, err
	}
	if err := s.quotaService.Enforce(result); err != nil {
		return nil, err
	}

	membership := &model.Membership{
		ProjectID:   projectID,
		RoleID:      req.RoleID,
		IsAdmin:     req.IsAdmin,
		InvitedByID: &inviterID,
	}

	if req.UserID != nil {
		if _, err := s.userRepo.FindByID(*req.UserID); err != nil {
			return nil, err
		}
		if _, err := s.membershipRepo.FindByProjectAndUser(projectID, *req.UserID); err == nil {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "用户已是项目成员")
		} else if !pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
			return nil, err
		}
		membership.UserID = req.UserID
	} else {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		// 同一邮箱在同一项目只能有一条待接受邀请
		if _, err := s.membershipRepo.FindPendingByProjectAndEmail(projectID, email); err == nil {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "该邮箱已有待接受的邀请")
		} else if !pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
			return nil, err
		}
		token, err := utils.RandomToken(20)
		if err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成邀请token失败", err)
		}
		membership.Email = &email
		membership.Token = &token
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.Create(tx, membership); err != nil {
			return err
		}
		return s.bus.PublishSync(tx, core.MembershipPostSaveEvent{Membership: membership, Created: true})
	})
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(core.MembershipPostSaveEvent{Membership: membership, Created: true})
	return s.loadResponse(membership.ID)
}

func (s *membershipService) List(projectID int64) ([]*dto.MembershipResponse, error) {
	memberships, err := s.membershipRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.MembershipResponse, len(memberships))
	for i, membership := range memberships {
		responses[i] = s.toResponse(membership)
	}
	return responses, nil
}

func (s *membershipService) Update(projectID, id int64, req *dto.UpdateMembershipRequest) (*dto.MembershipResponse, error) {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return nil, err
	}
	membership, err := s.membershipOfProject(id, projectID)
	if err != nil {
		return nil, err
	}

	if req.RoleID != nil {
		if err := checkCatalogRow(s.taxonomyRepo, constants.KindRole, *req.RoleID, projectID); err != nil {
			return nil, err
		}
		membership.RoleID = *req.RoleID
	}
	if req.IsAdmin != nil {
		membership.IsAdmin = *req.IsAdmin
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.Update(tx, membership); err != nil {
			return err
		}
		return s.bus.PublishSync(tx, core.MembershipPostSaveEvent{Membership: membership, Created: false})
	})
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(core.MembershipPostSaveEvent{Membership: membership, Created: false})
	return s.loadResponse(membership.ID)
}

func (s *membershipService) Delete(projectID, id int64) error {
	project, err := loadWritableProject(s.projectRepo, projectID)
	if err != nil {
		return err
	}
	membership, err := s.membershipOfProject(id, projectID)
	if err != nil {
		return err
	}
	// 所有者的成员关系不可移除, 先转让项目
	if membership.UserID != nil && project.OwnerID != nil && *membership.UserID == *project.OwnerID {
		return pkgErrors.New(pkgErrors.CodeBadRequest, "不能移除项目所有者的成员关系")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 删除前同步通知, 处理器还能读到完整成员关系
		if err := s.bus.PublishSync(tx, core.MembershipDeletedEvent{Membership: membership}); err != nil {
			return err
		}
		return s.membershipRepo.Delete(tx, membership.ID)
	})
	if err != nil {
		return err
	}

	s.bus.PublishAsync(core.MembershipDeletedEvent{Membership: membership})
	return nil
}

func (s *membershipService) AcceptInvitation(userID int64, req *dto.AcceptInvitationRequest) (*dto.MembershipResponse, error) {
	membership, err := s.membershipRepo.FindByToken(req.Token)
	if err != nil {
		return nil, err
	}
	if membership.IsConfirmed() {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "邀请已被接受")
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}
	// 已是成员的用户不能再占用一条邀请
	if _, err := s.membershipRepo.FindByProjectAndUser(membership.ProjectID, userID); err == nil {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "用户已是项目成员")
	} else if !pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
		return nil, err
	}

	membership.UserID = &userID
	membership.Email = nil
	membership.Token = nil

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.Update(tx, membership); err != nil {
			return err
		}
		return s.bus.PublishSync(tx, core.MembershipPostSaveEvent{Membership: membership, Created: false})
	})
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(core.MembershipPostSaveEvent{Membership: membership, Created: false})
	return s.loadResponse(membership.ID)
}

func (s *membershipService) membershipOfProject(id, projectID int64) (*model.Membership, error) {
	membership, err := s.membershipRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if membership.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return membership, nil
}

func (s *membershipService) loadResponse(id int64) (*dto.MembershipResponse, error) {
	membership, err := s.membershipRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(membership), nil
}

func (s *membershipService) toResponse(membership *model.Membership) *dto.MembershipResponse {
	resp := &dto.MembershipResponse{
		ID:        membership.ID,
		ProjectID: membership.ProjectID,
		UserID:    membership.UserID,
		RoleID:    membership.RoleID,
		IsAdmin:   membership.IsAdmin,
		Email:     membership.Email,
		Confirmed: membership.IsConfirmed(),
		CreatedAt: membership.CreatedAt.Format(time.RFC3339),
	}
	if membership.Role != nil {
		resp.RoleName = membership.Role.Name
	}
	if membership.User != nil {
		resp.Username = membership.User.Username
	}
	return resp
}
