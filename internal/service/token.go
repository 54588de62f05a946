package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/pkg/config"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, malformed payload, expiry.
var ErrInvalidToken = errors.New("invalid token")

// TokenIdentity is the resolved content of a verified session token
type TokenIdentity struct {
	SubjectID string
	TeamID    string
	Role      domain.Role
}

// TokenService issues and verifies signed session tokens. Verification is
// stateless: there is no revocation list, a compromised token stays valid
// until it expires.
type TokenService struct {
	secret []byte
	issuer string

	teamTTL  time.Duration
	adminTTL time.Duration
}

// NewTokenService creates a new TokenService
func NewTokenService(cfg *config.JWTConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		teamTTL:  time.Duration(cfg.TeamExpiryHours) * time.Hour,
		adminTTL: time.Duration(cfg.AdminExpiryHours) * time.Hour,
	}
}

// TTLFor returns the configured token lifetime for a role
func (s *TokenService) TTLFor(role domain.Role) time.Duration {
	if role == domain.RoleSudo {
		return s.adminTTL
	}
	return s.teamTTL
}

// Issue produces a signed token embedding the subject, role and expiry.
// teamID is empty for admin tokens.
func (s *TokenService) Issue(subjectID, teamID string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": subjectID,
		"role":    string(role),
		"iss":     s.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	if teamID != "" {
		claims["team_id"] = teamID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token and returns the embedded identity
func (s *TokenService) Verify(tokenString string) (*TokenIdentity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subjectID, ok := claims["user_id"].(string)
	if !ok || subjectID == "" {
		return nil, ErrInvalidToken
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	role := domain.Role(roleStr)
	if role != domain.RoleUser && role != domain.RoleSudo {
		return nil, ErrInvalidToken
	}

	teamID, _ := claims["team_id"].(string)

	return &TokenIdentity{
		SubjectID: subjectID,
		TeamID:    teamID,
		Role:      role,
	}, nil
}
