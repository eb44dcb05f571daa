package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"github.com/taskdesk/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingSecret      = errors.New("JWT_SECRET not set in environment")
	ErrInvalidRole        = errors.New("invalid role")
)

// AuthService registers users and issues JWTs
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{db: db, secret: []byte(secret), ttl: ttl, log: log}
}

// Register creates a new employee account
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	return s.createUser(ctx, req.Email, req.Password, req.Name, models.RoleEmployee)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	exists, err := repositories.NewUserRepository(s.db.WithContext(ctx)).ExistsByEmail(strings.ToLower(email))
	if err != nil || exists {
		return err
	}
	if _, err := s.createUser(ctx, email, password, "Administrator", models.RoleAdmin); err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

func (s *AuthService) createUser(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	users := repositories.NewUserRepository(s.db.WithContext(ctx))
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := users.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     strings.TrimSpace(name),
		Role:     role,
	}
	if err := users.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := repositories.NewUserRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetRole changes the role of a user
func (s *AuthService) SetRole(ctx context.Context, actor Actor, id string, role models.Role) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleManager && role != models.RoleEmployee {
		return nil, ErrInvalidRole
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		var err error
		if user, err = users.FindByID(id); err != nil {
			return err
		}
		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return err
		}
		return recordActivity(tx, actor, "user.role_changed", "user", user.ID, map[string]interface{}{
			"role": role,
		})
	})
	if err != nil {
		return nil, err
	}
	user.Role = role
	return &user, nil
}

// Login authenticates a user and returns a token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := repositories.NewUserRepository(s.db.WithContext(ctx)).FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	}, nil
}

// GenerateToken generates a new JWT token for a user
func (s *AuthService) GenerateToken(user models.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := dto.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims if valid
func (s *AuthService) ValidateToken(tokenString string) (*dto.TokenClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &dto.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*dto.TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate validates tokenString and refreshes the role and email from
// the user row, so role changes apply to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*dto.TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := repositories.NewUserRepository(s.db.WithContext(ctx)).FindByID(claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	claims.Email = user.Email
	claims.Role = string(user.Role)
	return claims, nil
}
