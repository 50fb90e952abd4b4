package services

import (
	"context"
	"fmt"
	"time"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"
	"dropcars/internal/session"
	"dropcars/internal/utils"
	"dropcars/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	OwnerSignIn(ctx context.Context, request *SignInRequest) (*SignInResponse, error)
	DriverSignIn(ctx context.Context, request *SignInRequest) (*SignInResponse, error)
	ValidateToken(tokenString string) (*TokenClaims, error)
}

type SignInRequest struct {
	PrimaryNumber string `json:"primary_number" validate:"required,phone"`
	Password      string `json:"password" validate:"required"`
	DeviceID      string `json:"device_id"`
}

type SignInResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	Role        session.Role `json:"role"`
	UserID      string       `json:"user_id"`
	FullName    string       `json:"full_name"`
}

type TokenClaims struct {
	UserID string       `json:"user_id"`
	Role   session.Role `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	ownerRepo  interfaces.OwnerRepository
	driverRepo interfaces.DriverRepository
	sessions   session.Store
	jwtSecret  string
	tokenTTL   time.Duration
	logger     *logger.Logger
}

func NewAuthService(
	ownerRepo interfaces.OwnerRepository,
	driverRepo interfaces.DriverRepository,
	sessions session.Store,
	jwtSecret string,
	tokenTTL time.Duration,
	log *logger.Logger,
) AuthService {
	return &authService{
		ownerRepo:  ownerRepo,
		driverRepo: driverRepo,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		logger:     log,
	}
}

func (s *authService) OwnerSignIn(ctx context.Context, request *SignInRequest) (*SignInResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	owner, err := s.ownerRepo.GetByPrimaryNumber(ctx, request.PrimaryNumber)
	if err != nil || owner == nil {
		s.logger.WithField("primary_number", utils.MaskPhone(request.PrimaryNumber)).Warn("Owner sign-in with unknown number")
		return nil, ErrInvalidCredentials
	}

	if !checkPassword(request.Password, owner.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(owner.ID, session.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.storeCredential(ctx, request.DeviceID, session.RoleOwner, owner.ID, token); err != nil {
		return nil, err
	}

	if err := s.ownerRepo.UpdateLastLogin(ctx, owner.ID); err != nil {
		s.logger.WithError(err).WithOwnerID(owner.ID).Warn("Failed to record owner last login")
	}

	s.logger.WithOwnerID(owner.ID).Info("Vehicle owner signed in")

	return &SignInResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		Role:        session.RoleOwner,
		UserID:      owner.ID.Hex(),
		FullName:    owner.FullName,
	}, nil
}

func (s *authService) DriverSignIn(ctx context.Context, request *SignInRequest) (*SignInResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	driver, err := s.driverRepo.GetByPrimaryNumber(ctx, request.PrimaryNumber)
	if err != nil || driver == nil {
		s.logger.WithField("primary_number", utils.MaskPhone(request.PrimaryNumber)).Warn("Driver sign-in with unknown number")
		return nil, ErrInvalidCredentials
	}

	if driver.Status == models.DriverStatusBlocked {
		return nil, fmt.Errorf("driver account is blocked")
	}

	if !checkPassword(request.Password, driver.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(driver.ID, session.RoleDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.storeCredential(ctx, request.DeviceID, session.RoleDriver, driver.ID, token); err != nil {
		return nil, err
	}

	if err := s.driverRepo.UpdateLastLogin(ctx, driver.ID); err != nil {
		s.logger.WithError(err).WithDriverID(driver.ID).Warn("Failed to record driver last login")
	}

	s.logger.WithDriverID(driver.ID).Info("Driver signed in")

	return &SignInResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		Role:        session.RoleDriver,
		UserID:      driver.ID.Hex(),
		FullName:    driver.FullName,
	}, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *authService) generateToken(userID primitive.ObjectID, role session.Role) (string, error) {
	claims := &TokenClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// storeCredential overwrites the role's stored credential only; the other
// role's credential, if any, keeps coexisting on the same device.
func (s *authService) storeCredential(ctx context.Context, deviceID string, role session.Role, userID primitive.ObjectID, token string) error {
	if deviceID == "" {
		return nil
	}
	cred := &session.Credential{
		Role:        role,
		Token:       token,
		UserID:      userID.Hex(),
		LastLoginAt: time.Now(),
	}
	if err := s.sessions.Save(ctx, deviceID, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	if len(password) < utils.PasswordMinLength {
		return "", NewValidationError("password", fmt.Sprintf("must be at least %d characters", utils.PasswordMinLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
