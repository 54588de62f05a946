package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService authenticates teams and admins and hands out session tokens
type AuthService struct {
	store  storage.Store
	tokens *TokenService
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(store storage.Store, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: logger.Named("auth-service"),
	}
}

// LoginTeam authenticates a team by credential identifier and password and
// returns the team together with a role-user session token.
func (s *AuthService) LoginTeam(ctx context.Context, teamID, password string) (*domain.Team, string, error) {
	team, err := s.store.Teams().GetByTeamID(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get team: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(team.ID, team.TeamID, domain.RoleUser, s.tokens.TTLFor(domain.RoleUser))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Team logged in",
		zap.String("team_id", team.TeamID),
		zap.String("team_name", team.TeamName),
	)
	return team, token, nil
}

// LoginAdmin authenticates an admin by email and password and returns the
// admin together with a role-sudo session token.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, string, error) {
	admin, err := s.store.Admins().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID, "", domain.RoleSudo, s.tokens.TTLFor(domain.RoleSudo))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Admin logged in", zap.String("email", admin.Email))
	return admin, token, nil
}

// VerifyAdminPassword re-checks an admin password. Used by destructive
// operations (challenge deletion) that require fresh proof of possession
// on top of a valid session token.
func (s *AuthService) VerifyAdminPassword(ctx context.Context, adminID, password string) error {
	admin, err := s.store.Admins().GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to get admin: %w", err)
	}

	if admin.Role != domain.RoleSudo {
		return ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// CreateAdmin provisions an administrative account. Not exposed over HTTP;
// reached through the ctf-admin CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.Admin{
		ID:           domain.NewAdminID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleSudo,
	}

	if err := s.store.Admins().Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Admin created", zap.String("email", admin.Email))
	return admin, nil
}
