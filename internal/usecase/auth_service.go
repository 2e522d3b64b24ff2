package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

type AuthService struct {
	Users     UserStore
	JWTSecret string
}

// Register creates a user with a bcrypt-hashed password and returns a
// signed token for immediate use.
func (s *AuthService) Register(firstname, lastname, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password required", domain.ErrInvalidState)
	}
	if _, ok := s.Users.UserByEmail(email); ok {
		return "", nil, fmt.Errorf("%w: email already registered", domain.ErrInvalidState)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		Firstname:    firstname,
		Lastname:     lastname,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.CreateUser(u); err != nil {
		return "", nil, err
	}
	token, err := s.sign(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) Login(email, password string) (string, *domain.User, error) {
	u, ok := s.Users.UserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	token, err := s.sign(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Verify parses a bearer token and resolves it to the stored user.
func (s *AuthService) Verify(token string) (*domain.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims", domain.ErrUnauthorized)
	}
	uid, _ := claims["user_id"].(string)
	u, ok := s.Users.UserByID(uid)
	if !ok {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return u, nil
}

func (s *AuthService) sign(u *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.JWTSecret))
}
