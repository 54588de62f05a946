package storage

import (
	"context"
	"errors"

	"github.com/ctfplayground/backend/internal/domain"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabase      = errors.New("database error")
)

// TeamStore defines the interface for team storage operations
type TeamStore interface {
	// Create creates a new team
	Create(ctx context.Context, team *domain.Team) error

	// GetByID retrieves a team by document ID
	GetByID(ctx context.Context, id string) (*domain.Team, error)

	// GetByTeamID retrieves a team by its credential identifier (TEAM-...)
	GetByTeamID(ctx context.Context, teamID string) (*domain.Team, error)

	// GetByName retrieves a team by display name
	GetByName(ctx context.Context, teamName string) (*domain.Team, error)

	// GetAll retrieves all teams
	GetAll(ctx context.Context) ([]*domain.Team, error)

	// RecordSolve atomically adds challengeID to the team's solved set and
	// increments the score by points. The add and the increment are a
	// single conditional write: if the solved set already contains
	// challengeID the call returns ErrAlreadyExists and mutates nothing,
	// even under concurrent callers. Returns the team's new score.
	RecordSolve(ctx context.Context, id, challengeID string, points int) (int, error)
}

// ChallengeStore defines the interface for challenge storage operations
type ChallengeStore interface {
	// Create creates a new challenge
	Create(ctx context.Context, challenge *domain.Challenge) error

	// GetByID retrieves a challenge by ID
	GetByID(ctx context.Context, id string) (*domain.Challenge, error)

	// GetAll retrieves all challenges, hidden ones included
	GetAll(ctx context.Context) ([]*domain.Challenge, error)

	// GetVisible retrieves challenges with visible = true
	GetVisible(ctx context.Context) ([]*domain.Challenge, error)

	// Update replaces a challenge
	Update(ctx context.Context, challenge *domain.Challenge) error

	// Delete deletes a challenge
	Delete(ctx context.Context, id string) error

	// SetVisibility toggles the visibility flag and returns the updated
	// challenge
	SetVisibility(ctx context.Context, id string, visible bool) (*domain.Challenge, error)

	// AddSolver atomically adds a team document ID to the solver set.
	// Returns ErrAlreadyExists if the team is already recorded.
	AddSolver(ctx context.Context, id, teamDocID string) error
}

// AdminStore defines the interface for admin account storage
type AdminStore interface {
	// Create creates a new admin
	Create(ctx context.Context, admin *domain.Admin) error

	// GetByID retrieves an admin by document ID
	GetByID(ctx context.Context, id string) (*domain.Admin, error)

	// GetByEmail retrieves an admin by email
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

// Store aggregates all storage interfaces
type Store interface {
	Teams() TeamStore
	Challenges() ChallengeStore
	Admins() AdminStore

	// Close closes the storage connection
	Close() error

	// Ping checks if the storage is alive
	Ping(ctx context.Context) error
}
