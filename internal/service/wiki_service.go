package service

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
	pkgErrors "agile-pm/pkg/errors"
	"agile-pm/pkg/utils"
)

type WikiService interface {
	CreatePage(projectID, ownerID int64, req *dto.CreateWikiPageRequest) (*dto.WikiPageResponse, error)
	GetPageBySlug(projectID int64, slug string) (*dto.WikiPageResponse, error)
	ListPages(projectID int64) ([]*dto.WikiPageResponse, error)
	// UpdatePage 乐观锁更新, version不匹配返回过期写错误
	UpdatePage(projectID, id, modifierID int64, req *dto.UpdateWikiPageRequest) (*dto.WikiPageResponse, error)
	DeletePage(projectID, id int64) error

	CreateLink(projectID int64, req *dto.CreateWikiLinkRequest) (*dto.WikiLinkResponse, error)
	ListLinks(projectID int64) ([]*dto.WikiLinkResponse, error)
	DeleteLink(projectID, id int64) error
}

type wikiService struct {
	db          *gorm.DB
	wikiRepo    repository.WikiRepository
	projectRepo repository.ProjectRepository
}

func NewWikiService(db *gorm.DB, wikiRepo repository.WikiRepository, projectRepo repository.ProjectRepository) WikiService {
	return &wikiService{db: db, wikiRepo: wikiRepo, projectRepo: projectRepo}
}

func (s *wikiService) CreatePage(projectID, ownerID int64, req *dto.CreateWikiPageRequest) (*dto.WikiPageResponse, error) {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return nil, err
	}

	slug := utils.Slugify(strings.TrimSpace(req.Slug))
	if slug == "" {
		return nil, pkgErrors.NewValidation("slug", "页面标识不能为空")
	}
	if _, err := s.wikiRepo.FindPageBySlug(projectID, slug); err == nil {
		return nil, pkgErrors.ErrNameConflict
	} else if !pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
		return nil, err
	}

	page := &model.WikiPage{
		ProjectID:      projectID,
		Slug:           slug,
		Content:        req.Content,
		OwnerID:        &ownerID,
		LastModifierID: &ownerID,
		Version:        1,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.wikiRepo.CreatePage(tx, page)
	})
	if err != nil {
		return nil, err
	}
	return s.toPageResponse(page), nil
}

func (s *wikiService) GetPageBySlug(projectID int64, slug string) (*dto.WikiPageResponse, error) {
	page, err := s.wikiRepo.FindPageBySlug(projectID, slug)
	if err != nil {
		return nil, err
	}
	return s.toPageResponse(page), nil
}

func (s *wikiService) ListPages(projectID int64) ([]*dto.WikiPageResponse, error) {
	pages, err := s.wikiRepo.ListPages(projectID)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.WikiPageResponse, len(pages))
	for i, page := range pages {
		responses[i] = s.toPageResponse(page)
	}
	return responses, nil
}

func (s *wikiService) UpdatePage(projectID, id, modifierID int64, req *dto.UpdateWikiPageRequest) (*dto.WikiPageResponse, error) {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return nil, err
	}
	page, err := s.pageOfProject(id, projectID)
	if err != nil {
		return nil, err
	}
	if page.Version != req.Version {
		return nil, pkgErrors.ErrStaleWrite
	}

	if req.Content != nil {
		page.Content = *req.Content
	}
	page.LastModifierID = &modifierID
	page.Version++

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.wikiRepo.UpdatePage(tx, page)
	})
	if err != nil {
		return nil, err
	}
	return s.toPageResponse(page), nil
}

func (s *wikiService) DeletePage(projectID, id int64) error {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return err
	}
	page, err := s.pageOfProject(id, projectID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.wikiRepo.DeletePage(tx, page.ID)
	})
}

func (s *wikiService) CreateLink(projectID int64, req *dto.CreateWikiLinkRequest) (*dto.WikiLinkResponse, error) {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return nil, err
	}

	href := strings.TrimSpace(req.Href)
	links, err := s.wikiRepo.ListLinks(projectID)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if link.Href == href {
			return nil, pkgErrors.ErrNameConflict
		}
	}

	link := &model.WikiLink{
		ProjectID: projectID,
		Title:     strings.TrimSpace(req.Title),
		Href:      href,
	}
	if req.Order != 0 {
		link.Order = req.Order
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.wikiRepo.CreateLink(tx, link)
	})
	if err != nil {
		return nil, err
	}
	return s.toLinkResponse(link), nil
}

func (s *wikiService) ListLinks(projectID int64) ([]*dto.WikiLinkResponse, error) {
	links, err := s.wikiRepo.ListLinks(projectID)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.WikiLinkResponse, len(links))
	for i, link := range links {
		responses[i] = s.toLinkResponse(link)
	}
	return responses, nil
}

func (s *wikiService) DeleteLink(projectID, id int64) error {
	if _, err := loadWritableProject(s.projectRepo, projectID); err != nil {
		return err
	}
	links, err := s.wikiRepo.ListLinks(projectID)
	if err != nil {
		return err
	}
	found := false
	for _, link := range links {
		if link.ID == id {
			found = true
			break
		}
	}
	if !found {
		return pkgErrors.New(pkgErrors.CodeNotFound, "Wiki链接不存在")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.wikiRepo.DeleteLink(tx, id)
	})
}

func (s *wikiService) pageOfProject(id, projectID int64) (*model.WikiPage, error) {
	page, err := s.wikiRepo.FindPageByID(id)
	if err != nil {
		return nil, err
	}
	if page.ProjectID != projectID {
		return nil, pkgErrors.ErrWrongProject
	}
	return page, nil
}

func (s *wikiService) toPageResponse(page *model.WikiPage) *dto.WikiPageResponse {
	return &dto.WikiPageResponse{
		ID:        page.ID,
		ProjectID: page.ProjectID,
		Slug:      page.Slug,
		Content:   page.Content,
		OwnerID:   page.OwnerID,
		Version:   page.Version,
		CreatedAt: page.CreatedAt.Format(time.RFC3339),
		UpdatedAt: page.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *wikiService) toLinkResponse(link *model.WikiLink) *dto.WikiLinkResponse {
	return &dto.WikiLinkResponse{
		ID:        link.ID,
		ProjectID: link.ProjectID,
		Title:     link.Title,
		Href:      link.Href,
		Order:     link.Order,
	}
}
