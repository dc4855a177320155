package service

import (
	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/repository"
)

type UserService interface {
	Get(id int64) (*dto.UserInfo, error)
	List(page, pageSize int, keyword string) ([]*dto.UserInfo, int64, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Get(id int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toUserInfo(user), nil
}

func (s *userService) List(page, pageSize int, keyword string) ([]*dto.UserInfo, int64, error) {
	users, total, err := s.userRepo.List(page, pageSize, keyword)
	if err != nil {
		return nil, 0, err
	}
	infos := make([]*dto.UserInfo, len(users))
	for i, user := range users {
		infos[i] = s.toUserInfo(user)
	}
	return infos, total, nil
}

func (s *userService) toUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		AuthType: user.AuthProvider,
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	if user.DisplayName != nil {
		info.DisplayName = *user.DisplayName
	} else {
		info.DisplayName = user.Username
	}
	return info
}
