package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/storage"
)

var (
	ErrTeamExists   = errors.New("team name already registered")
	ErrTooManyMembers = errors.New("team can have between 0 and 4 members")
)

// teamIDAttempts bounds the retry loop for credential identifier
// collisions. With 48 random bits a collision is already vanishingly rare.
const teamIDAttempts = 5

// TeamService handles team registration and read operations
type TeamService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewTeamService creates a new TeamService
func NewTeamService(store storage.Store, logger *zap.Logger) *TeamService {
	return &TeamService{
		store:  store,
		logger: logger.Named("team-service"),
	}
}

// Register creates a team with generated credentials. The returned
// response carries the plaintext password; it is never stored or logged.
func (s *TeamService) Register(ctx context.Context, req *domain.RegisterTeamRequest) (*domain.RegisterTeamResponse, error) {
	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" || req.Leader.Name == "" || req.Leader.Email == "" {
		return nil, storage.ErrInvalidInput
	}

	// Drop members with blank name or email, the way the admin console
	// submits trailing empty rows.
	members := make([]domain.Member, 0, len(req.Members))
	for _, m := range req.Members {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" {
			continue
		}
		members = append(members, m)
	}
	if len(members) > domain.MaxTeamMembers {
		return nil, ErrTooManyMembers
	}

	if _, err := s.store.Teams().GetByName(ctx, teamName); err == nil {
		return nil, ErrTeamExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}

	teamID, err := s.uniqueTeamID(ctx)
	if err != nil {
		return nil, err
	}

	password, err := domain.GenerateTeamPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	team := &domain.Team{
		ID:               domain.NewTeamDocID(),
		TeamID:           teamID,
		TeamName:         teamName,
		PasswordHash:     string(hash),
		Leader:           req.Leader,
		Members:          members,
		Score:            0,
		SolvedChallenges: []string{},
	}

	if err := s.store.Teams().Create(ctx, team); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrTeamExists
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.logger.Info("Team registered",
		zap.String("team_id", teamID),
		zap.String("team_name", teamName),
	)

	return &domain.RegisterTeamResponse{
		TeamID:   teamID,
		TeamName: teamName,
		Password: password,
	}, nil
}

func (s *TeamService) uniqueTeamID(ctx context.Context) (string, error) {
	for i := 0; i < teamIDAttempts; i++ {
		teamID, err := domain.GenerateTeamID()
		if err != nil {
			return "", fmt.Errorf("failed to generate team id: %w", err)
		}
		_, err = s.store.Teams().GetByTeamID(ctx, teamID)
		if errors.Is(err, storage.ErrNotFound) {
			return teamID, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check team id: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate unique team id after %d attempts", teamIDAttempts)
}

// Get returns a team's profile by document ID
func (s *TeamService) Get(ctx context.Context, subjectID string) (*domain.TeamProfile, error) {
	team, err := s.store.Teams().GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return team.Profile(), nil
}

// GetAll returns all registered teams, credentials stripped
func (s *TeamService) GetAll(ctx context.Context) ([]*domain.Team, error) {
	teams, err := s.store.Teams().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		t.PasswordHash = ""
	}
	return teams, nil
}

// ListSolved returns the IDs of challenges the team has solved
func (s *TeamService) ListSolved(ctx context.Context, subjectID string) ([]string, error) {
	team, err := s.store.Teams().GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if team.SolvedChallenges == nil {
		return []string{}, nil
	}
	return team.SolvedChallenges, nil
}
