package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"prediction-league/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin  = "admin"
	RolePlayer = "player"

	tokenIssuer = "prediction-league"
)

// AuthService issues and checks admin and player tokens
type AuthService struct {
	adminPassword string
	jwtSecret     []byte
	tokenExpiry   time.Duration
	clock         clock.Clock
}

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token grants admin capability
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// NewAuthService creates a new authentication service
func NewAuthService(adminPassword, jwtSecret string, tokenExpiry time.Duration, clk clock.Clock) *AuthService {
	if tokenExpiry <= 0 {
		tokenExpiry = 12 * time.Hour
	}
	return &AuthService{
		adminPassword: adminPassword,
		jwtSecret:     []byte(jwtSecret),
		tokenExpiry:   tokenExpiry,
		clock:         clk,
	}
}

// HasAdminPassword reports whether admin login is possible at all
func (a *AuthService) HasAdminPassword() bool {
	return a.adminPassword != ""
}

// CheckAdminPassword compares password with the configured admin password
func (a *AuthService) CheckAdminPassword(password string) error {
	if password == "" {
		return &models.ValidationError{Field: "password", Reason: "missing password"}
	}
	if !a.HasAdminPassword() {
		return models.ErrAdminUnavailable
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.adminPassword)) != 1 {
		return models.ErrInvalidPassword
	}
	return nil
}

// AdminLogin checks the admin password and returns an admin token
func (a *AuthService) AdminLogin(password string) (string, error) {
	if err := a.CheckAdminPassword(password); err != nil {
		return "", err
	}
	token, err := a.GenerateToken(RoleAdmin, "", "")
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// PlayerLogin checks a player's credentials against the league's player list
// and returns a player token together with the player's display name
func (a *AuthService) PlayerLogin(players map[string]models.Player, username, password string) (string, string, error) {
	username = models.NormalizeEmail(username)
	if username == "" || password == "" {
		return "", "", &models.ValidationError{Field: "username", Reason: "missing username or password"}
	}

	player, ok := players[username]
	if !ok || !CheckPassword(player.Password, password) {
		return "", "", models.ErrInvalidPassword
	}

	name := player.Name
	if name == "" {
		name = username
	}
	token, err := a.GenerateToken(RolePlayer, username, name)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, name, nil
}

// GenerateToken creates a signed token for the given role
func (a *AuthService) GenerateToken(role, username, name string) (string, error) {
	now := a.clock.Now()
	claims := JWTClaims{
		Role:     role,
		Username: username,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.clock.Now), jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// HashPassword hashes a player password with bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a stored password with a candidate. Stored values that
// are not bcrypt hashes are compared as plain text.
func CheckPassword(stored, candidate string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
