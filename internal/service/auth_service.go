package service

import (
	"golang.org/x/crypto/bcrypt"

	"agile-pm/internal/dto"
	"agile-pm/internal/model"
	"agile-pm/internal/pkg/config"
	"agile-pm/internal/pkg/jwt"
	"agile-pm/internal/repository"
	"agile-pm/pkg/constants"
	pkgErrors "agile-pm/pkg/errors"
)

type AuthService interface {
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	Register(req *dto.RegisterRequest) (*dto.UserInfo, error)
	RefreshToken(refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	cfg         *config.AuthConfig
	userRepo    repository.UserRepository
	ldapService LDAPService
}

func NewAuthService(cfg *config.AuthConfig, userRepo repository.UserRepository, ldapService LDAPService) AuthService {
	return &authService{
		cfg:         cfg,
		userRepo:    userRepo,
		ldapService: ldapService,
	}
}

func (s *authService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var userInfo *dto.UserInfo
	var err error

	switch req.AuthType {
	case constants.AuthTypeLDAP:
		if !s.cfg.LDAP.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "LDAP认证未启用")
		}
		userInfo, err = s.ldapService.Authenticate(req.Username, req.Password)
		if err != nil {
			return nil, err
		}
		if userInfo, err = s.syncLDAPUser(userInfo); err != nil {
			return nil, err
		}

	case constants.AuthTypeLocal:
		if !s.cfg.Local.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "本地认证未启用")
		}
		userInfo, err = s.authenticateLocal(req.Username, req.Password)
		if err != nil {
			return nil, err
		}

	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不支持的认证类型")
	}

	return s.issueTokens(userInfo)
}

func (s *authService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	if !s.cfg.Local.Enabled {
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "本地认证未启用")
	}

	if _, err := s.userRepo.FindByUsername(constants.AuthTypeLocal, req.Username); err == nil {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "用户名已被占用")
	} else if !pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}

	user := &model.User{
		AuthProvider: constants.AuthTypeLocal,
		Username:     req.Username,
		Password:     string(hashed),
		IsActive:     true,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	if req.DisplayName != "" {
		user.DisplayName = &req.DisplayName
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.toUserInfo(user), nil
}

func (s *authService) authenticateLocal(username, password string) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByUsername(constants.AuthTypeLocal, username)
	if err != nil {
		if pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "用户已被禁用")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	_ = s.userRepo.TouchLastLogin(user.ID)
	return s.toUserInfo(user), nil
}

// syncLDAPUser LDAP认证通过后把用户落到本地用户表, 返回带本地ID的用户信息
func (s *authService) syncLDAPUser(userInfo *dto.UserInfo) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByUsername(constants.AuthTypeLDAP, userInfo.Username)
	if err != nil {
		if !pkgErrors.IsCode(err, pkgErrors.CodeNotFound) {
			return nil, err
		}
		user = &model.User{
			AuthProvider: constants.AuthTypeLDAP,
			Username:     userInfo.Username,
			Password:     "",
			IsActive:     true,
		}
		if userInfo.Email != "" {
			user.Email = &userInfo.Email
		}
		if userInfo.DisplayName != "" {
			user.DisplayName = &userInfo.DisplayName
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
	}

	_ = s.userRepo.TouchLastLogin(user.ID)
	return s.toUserInfo(user), nil
}

func (s *authService) RefreshToken(refreshToken string) (*dto.LoginResponse, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != constants.JWTTypeRefresh {
		return nil, pkgErrors.New(pkgErrors.CodeUnauthorized, "无效的RefreshToken")
	}

	return s.issueTokens(&dto.UserInfo{
		ID:          claims.UserID,
		Username:    claims.Username,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		AuthType:    claims.AuthType,
	})
}

func (s *authService) issueTokens(userInfo *dto.UserInfo) (*dto.LoginResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(
		userInfo.ID, userInfo.Username, userInfo.Email, userInfo.DisplayName, userInfo.AuthType)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成AccessToken失败", err)
	}
	refreshToken, err := jwt.GenerateRefreshToken(
		userInfo.ID, userInfo.Username, userInfo.Email, userInfo.DisplayName, userInfo.AuthType)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成RefreshToken失败", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.JWT.AccessTokenExpire,
		User:         userInfo,
	}, nil
}

func (s *authService) toUserInfo(user *model.User) *dto.UserInfo {
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
