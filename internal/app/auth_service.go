package app

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SamOhrenberg/AboutSamuel/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidCredential = errors.New("invalid password")
	ErrAdminDisabled     = errors.New("admin login is not configured")
)

const adminSubject = "owner"

// AdminAuthService exchanges the owner's password for a short-lived bearer token.
type AdminAuthService struct {
	passwordHash  []byte
	jwtSecret     string
	jwtExpiration time.Duration
}

type AdminLoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAdminAuthService(passwordHash, jwtSecret string, jwtExpiration time.Duration) *AdminAuthService {
	if jwtExpiration <= 0 {
		jwtExpiration = 2 * time.Hour
	}
	return &AdminAuthService{
		passwordHash:  []byte(strings.TrimSpace(passwordHash)),
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AdminAuthService) Login(password string) (*AdminLoginResult, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrAdminDisabled
	}
	if strings.TrimSpace(password) == "" {
		return nil, ErrInvalidInput
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	expiresAt := time.Now().Add(s.jwtExpiration)
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, adminSubject, jwtutil.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &AdminLoginResult{Token: token, ExpiresAt: expiresAt.UTC()}, nil
}

// HashPassword produces a value suitable for auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
