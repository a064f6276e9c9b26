package services

import (
	"context"
	"strings"
	"time"

	"hotel-manager/models"
	"hotel-manager/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and
// inactive accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type AuthService struct {
	DB       *gorm.DB
	Secret   string
	TokenTTL time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{DB: db, Secret: secret, TokenTTL: ttl}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, (&ValidationError{}).
			Add("username", "username and password required").
			Add("password", "username and password required")
	}

	var user models.User
	err := s.DB.WithContext(ctx).Preload("Groups").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	if !user.Active || !utils.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	tok, err := utils.NewAccessToken(s.Secret, user.ID, s.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok.Token, ExpiresAt: tok.ExpiresAt, User: user}, nil
}

// Authenticate turns a bearer token into an Actor. The user is reloaded on
// every request so deactivation and group changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (Actor, error) {
	userID, err := utils.ParseAccessToken(s.Secret, rawToken)
	if err != nil {
		return Actor{}, ErrInvalidCredentials
	}
	var user models.User
	err = s.DB.WithContext(ctx).Preload("Groups.Permissions").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Actor{}, ErrInvalidCredentials
	}
	if err != nil {
		return Actor{}, errors.Wrap(err, "load user")
	}
	if !user.Active {
		return Actor{}, ErrInvalidCredentials
	}
	return NewActor(user), nil
}
