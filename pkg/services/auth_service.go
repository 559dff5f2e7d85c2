package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"railway/pkg/apperr"
	"railway/pkg/models"
	"railway/pkg/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "no active account found with the given credentials"}

var errBadToken = &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "token is invalid or expired"}

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	CreateUser(ctx context.Context, email, password string, staff bool) (models.User, error)
	Login(ctx context.Context, req models.LoginRequest, userAgent, ip string) (models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (models.AuthResponse, error)
	Authenticate(tokenStr string) (models.Identity, error)
	Me(ctx context.Context, userID int) (models.User, error)
	UpdateMe(ctx context.Context, userID int, req models.UpdateMeRequest) (models.User, error)
	Logout(ctx context.Context, userID int, refreshToken string) error
}

type cachedUser struct {
	User      models.User
	ExpiresAt time.Time
}

type authService struct {
	repo       repository.AuthRepository
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu        sync.RWMutex
	byID      map[int]*cachedUser
	lastSweep time.Time
}

const (
	userCacheTTL   = 15 * time.Minute
	userSweepEvery = 10 * time.Minute
)

func NewAuthService(repo repository.AuthRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) AuthService {
	s := &authService{
		repo:       repo,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		byID:       make(map[int]*cachedUser),
		lastSweep:  time.Now(),
	}
	return s
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	if err := Validate(req); err != nil {
		return models.User{}, err
	}
	return s.CreateUser(ctx, req.Email, req.Password, false)
}

func (s *authService) CreateUser(ctx context.Context, email, password string, staff bool) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hashed), staff)
	if err != nil {
		return models.User{}, err
	}

	s.setUser(user)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest, userAgent, ip string) (models.AuthResponse, error) {
	if err := Validate(req); err != nil {
		return models.AuthResponse{}, err
	}

	user, hashedPw, err := s.repo.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.AuthResponse{}, errBadCredentials
	}
	if err != nil {
		return models.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPw), []byte(req.Password)); err != nil {
		return models.AuthResponse{}, errBadCredentials
	}

	s.setUser(user)
	return s.createSessionAndRespond(ctx, user, userAgent, ip)
}

// Refresh rotates the refresh token; the presented token stops working.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (models.AuthResponse, error) {
	if refreshToken == "" {
		return models.AuthResponse{}, apperr.Invalid("refresh", "this field is required")
	}

	session, user, err := s.repo.GetSessionByToken(ctx, refreshToken)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.AuthResponse{}, errBadToken
	}
	if err != nil {
		return models.AuthResponse{}, err
	}

	if time.Now().After(session.ExpiresAt) {
		s.repo.DeleteSessionByToken(ctx, session.UserID, refreshToken)
		return models.AuthResponse{}, errBadToken
	}

	newRefresh := generateRefreshToken()
	if err := s.repo.UpdateSession(ctx, session.ID, refreshToken, newRefresh, time.Now().Add(s.refreshTTL)); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.AuthResponse{}, errBadToken
		}
		return models.AuthResponse{}, err
	}

	access, err := s.generateAccessToken(user)
	if err != nil {
		return models.AuthResponse{}, err
	}
	s.setUser(user)

	return models.AuthResponse{
		Access:    access,
		Refresh:   newRefresh,
		User:      user,
		ExpiresIn: int(s.accessTTL.Seconds()),
	}, nil
}

// Authenticate verifies an access token and returns the identity it carries.
func (s *authService) Authenticate(tokenStr string) (models.Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return models.Identity{}, errBadToken
	}

	if tt, _ := claims["token_type"].(string); tt != "access" {
		return models.Identity{}, errBadToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID < 1 {
		return models.Identity{}, errBadToken
	}
	email, _ := claims["email"].(string)
	staff, _ := claims["is_staff"].(bool)

	return models.Identity{UserID: int(userID), Email: email, Staff: staff}, nil
}

func (s *authService) Me(ctx context.Context, userID int) (models.User, error) {
	if user, ok := s.getUser(userID); ok {
		return user, nil
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	s.setUser(user)
	return user, nil
}

// UpdateMe changes email and/or password. A password change ends every
// session of the user.
func (s *authService) UpdateMe(ctx context.Context, userID int, req models.UpdateMeRequest) (models.User, error) {
	if err := Validate(req); err != nil {
		return models.User{}, err
	}

	var hashed *string
	if req.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		hs := string(h)
		hashed = &hs
	}

	user, err := s.repo.UpdateUser(ctx, userID, req.Email, hashed)
	if err != nil {
		return models.User{}, err
	}

	if hashed != nil {
		if err := s.repo.DeleteAllSessionsByUserID(ctx, userID); err != nil {
			return user, err
		}
	}

	s.setUser(user)
	return user, nil
}

// Logout ends the caller's session holding refreshToken. Tokens of other
// users are left alone.
func (s *authService) Logout(ctx context.Context, userID int, refreshToken string) error {
	if refreshToken == "" {
		return apperr.Invalid("refresh", "this field is required")
	}
	return s.repo.DeleteSessionByToken(ctx, userID, refreshToken)
}

func (s *authService) getUser(id int) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.byID[id]; ok && time.Now().Before(item.ExpiresAt) {
		return item.User, true
	}
	return models.User{}, false
}

// setUser caches user and, at most every userSweepEvery, drops expired
// entries. Sweeping on write keeps the service free of background goroutines.
func (s *authService) setUser(user models.User) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[user.ID] = &cachedUser{User: user, ExpiresAt: now.Add(userCacheTTL)}
	if now.Sub(s.lastSweep) >= userSweepEvery {
		s.sweepUsers(now)
	}
}

func (s *authService) sweepUsers(now time.Time) {
	for k, v := range s.byID {
		if now.After(v.ExpiresAt) {
			delete(s.byID, k)
		}
	}
	s.lastSweep = now
}

func (s *authService) createSessionAndRespond(ctx context.Context, user models.User, userAgent, ip string) (models.AuthResponse, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return models.AuthResponse{}, err
	}
	refresh := generateRefreshToken()

	if err := s.repo.CreateSession(ctx, user.ID, refresh, userAgent, ip, time.Now().Add(s.refreshTTL)); err != nil {
		return models.AuthResponse{}, fmt.Errorf("create session: %w", err)
	}

	return models.AuthResponse{
		Access:    access,
		Refresh:   refresh,
		User:      user,
		ExpiresIn: int(s.accessTTL.Seconds()),
	}, nil
}

func (s *authService) generateAccessToken(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"email":      user.Email,
		"is_staff":   user.IsStaff,
		"exp":        now.Add(s.accessTTL).Unix(),
		"iat":        now.Unix(),
		"token_type": "access",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func generateRefreshToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
