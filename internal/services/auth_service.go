package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
)

// AuthService authenticates users and issues session tokens.
type AuthService struct {
	db  *gorm.DB
	jwt *auth.JWTManager
}

func NewAuthService(db *gorm.DB, jwt *auth.JWTManager) *AuthService {
	return &AuthService{db: db, jwt: jwt}
}

// Login verifies the credentials and account gates, then issues a signed
// token embedding id, username, role and mess binding.
func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountBlocked
	}
	if user.SubscriptionExpired(time.Now()) {
		return "", nil, ErrSubscriptionExpired
	}

	token, err := s.jwt.Generate(&user)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}

// CurrentUser returns the fresh user record for the caller, with the bound
// mess preloaded.
func (s *AuthService) CurrentUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Mess").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
