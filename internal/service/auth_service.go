package service

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/jwt"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

var (
	ErrAccountExists      = errors.New("帳號已被使用")
	ErrInvalidCredentials = errors.New("帳號或密碼錯誤")
	ErrAccountSuspended   = errors.New("帳號已被停用，請聯繫客服")
	ErrUserNotFound       = errors.New("找不到該會員")
)

type AuthService struct {
	userRepo   *repository.UserRepository
	subService *SubscriptionService
	cfg        *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, subService *SubscriptionService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		subService: subService,
		cfg:        cfg,
	}
}

// Register 會員註冊，成功後自動開通試用訂閱
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByAccount(req.Account)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Account:        req.Account,
		Nickname:       req.Nickname,
		PasswordHash:   string(hash),
		Role:           "member",
		Status:         "active",
		BusinessType:   req.BusinessType,
		BusinessRegion: req.BusinessRegion,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	sub, err := s.subService.StartTrial(user.ID)
	if err != nil {
		// 帳號已建立，試用開通失敗留待後續補開
		log.Printf("Failed to start trial for user %d: %v", user.ID, err)
		return &dto.RegisterResponse{UserID: user.ID}, nil
	}

	return &dto.RegisterResponse{
		UserID:         user.ID,
		SubscriptionID: sub.ID,
		TrialEndDate:   sub.EndDate.Format(dateLayout),
	}, nil
}

// Login 帳號密碼登入，成功後簽發 JWT
// 帳號不存在與密碼錯誤回同一個錯誤，避免洩漏帳號是否存在
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByAccount(req.Account)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status != "active" {
		return nil, ErrAccountSuspended
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(user.ID); err != nil {
		log.Printf("Failed to touch last login for user %d: %v", user.ID, err)
	}

	return &dto.LoginResponse{
		Token: token,
		User:  toUserProfile(user),
	}, nil
}

// GetProfile 取得會員基本資料
func (s *AuthService) GetProfile(userID int64) (*dto.UserProfile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserProfile(user), nil
}

func toUserProfile(user *model.User) *dto.UserProfile {
	return &dto.UserProfile{
		ID:             user.ID,
		Account:        user.Account,
		Nickname:       user.Nickname,
		Role:           user.Role,
		BusinessType:   user.BusinessType,
		BusinessRegion: user.BusinessRegion,
	}
}
