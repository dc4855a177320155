package repository

import (
	"gorm.io/gorm"

	"agile-pm/internal/model"
	pkgErrors "agile-pm/pkg/errors"
)

type MembershipRepository interface {
	Create(tx *gorm.DB, membership *model.Membership) error
	FindByID(id int64) (*model.Membership, error)
	FindByProjectAndUser(projectID, userID int64) (*model.Membership, error)
	// FindByProjectAndUserTx 事务内查询, 级联角色
	FindByProjectAndUserTx(tx *gorm.DB, projectID, userID int64) (*model.Membership, error)
	FindPendingByProjectAndEmail(projectID int64, email string) (*model.Membership, error)
	FindByToken(token string) (*model.Membership, error)
	ListByProject(projectID int64) ([]*model.Membership, error)
	ListByProjectIDs(projectIDs []int64) ([]*model.Membership, error)
	Update(tx *gorm.DB, membership *model.Membership) error
	Delete(tx *gorm.DB, id int64) error
	DeleteByProject(tx *gorm.DB, projectID int64) error
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(tx *gorm.DB, membership *model.Membership) error {
	if err := tx.Create(membership).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建成员关系失败", err)
	}
	return nil
}

func (r *membershipRepository) FindByID(id int64) (*model.Membership, error) {
	var membership model.Membership
	if err := r.db.Preload("Role").First(&membership, id).Error; err != nil {
		return nil, translateNotFound(err, "查询成员关系失败")
	}
	return &membership, nil
}

func (r *membershipRepository) FindByProjectAndUser(projectID, userID int64) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error
	if err != nil {
		return nil, translateNotFound(err, "查询成员关系失败")
	}
	return &membership, nil
}

func (r *membershipRepository) FindByProjectAndUserTx(tx *gorm.DB, projectID, userID int64) (*model.Membership, error) {
	var membership model.Membership
	err := tx.Preload("Role").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error
	if err != nil {
		return nil, translateNotFound(err, "查询成员关系失败")
	}
	return &membership, nil
}

func (r *membershipRepository) FindPendingByProjectAndEmail(projectID int64, email string) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.Where("project_id = ? AND email = ? AND user_id IS NULL", projectID, email).
		First(&membership).Error
	if err != nil {
		return nil, translateNotFound(err, "查询邀请失败")
	}
	return &membership, nil
}

func (r *membershipRepository) FindByToken(token string) (*model.Membership, error) {
	var membership model.Membership
	if err := r.db.Where("token = ?", token).First(&membership).Error; err != nil {
		return nil, translateNotFound(err, "查询邀请失败")
	}
	return &membership, nil
}

func (r *membershipRepository) ListByProject(projectID int64) ([]*model.Membership, error) {
	var memberships []*model.Membership
	err := r.db.Where("project_id = ?", projectID).
		Preload("Role").Preload("User").
		Order("id ASC").Find(&memberships).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询成员列表失败", err)
	}
	return memberships, nil
}

func (r *membershipRepository) ListByProjectIDs(projectIDs []int64) ([]*model.Membership, error) {
	if len(projectIDs) == 0 {
		return []*model.Membership{}, nil
	}
	var memberships []*model.Membership
	err := r.db.Where("project_id IN ?", projectIDs).Find(&memberships).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询成员列表失败", err)
	}
	return memberships, nil
}

func (r *membershipRepository) Update(tx *gorm.DB, membership *model.Membership) error {
	if err := tx.Save(membership).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新成员关系失败", err)
	}
	return nil
}

func (r *membershipRepository) Delete(tx *gorm.DB, id int64) error {
	if err := tx.Delete(&model.Membership{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除成员关系失败", err)
	}
	return nil
}

func (r *membershipRepository) DeleteByProject(tx *gorm.DB, projectID int64) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&model.Membership{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目成员失败", err)
	}
	return nil
}
