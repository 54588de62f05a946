package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/storage"
)

// Store implements an in-memory storage
type Store struct {
	teams      *TeamStore
	challenges *ChallengeStore
	admins     *AdminStore
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		teams:      &TeamStore{data: make(map[string]*domain.Team)},
		challenges: &ChallengeStore{data: make(map[string]*domain.Challenge)},
		admins:     &AdminStore{data: make(map[string]*domain.Admin)},
	}
}

func (s *Store) Teams() storage.TeamStore           { return s.teams }
func (s *Store) Challenges() storage.ChallengeStore { return s.challenges }
func (s *Store) Admins() storage.AdminStore         { return s.admins }
func (s *Store) Close() error                       { return nil }
func (s *Store) Ping(ctx context.Context) error     { return nil }

// TeamStore implements in-memory team storage
type TeamStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Team // key: document ID
}

func (s *TeamStore) Create(ctx context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[team.ID]; exists {
		return storage.ErrAlreadyExists
	}
	for _, t := range s.data {
		if t.TeamID == team.TeamID || t.TeamName == team.TeamName {
			return storage.ErrAlreadyExists
		}
	}

	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	s.data[team.ID] = cloneTeam(team)
	return nil
}

func (s *TeamStore) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneTeam(team), nil
}

func (s *TeamStore) GetByTeamID(ctx context.Context, teamID string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.data {
		if team.TeamID == teamID {
			return cloneTeam(team), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *TeamStore) GetByName(ctx context.Context, teamName string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.data {
		if team.TeamName == teamName {
			return cloneTeam(team), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *TeamStore) GetAll(ctx context.Context) ([]*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]*domain.Team, 0, len(s.data))
	for _, team := range s.data {
		teams = append(teams, cloneTeam(team))
	}
	return teams, nil
}

// RecordSolve performs the check and the mutation under a single lock so
// concurrent callers observe the same add-if-absent semantics as the
// MongoDB conditional update.
func (s *TeamStore) RecordSolve(ctx context.Context, id, challengeID string, points int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, exists := s.data[id]
	if !exists {
		return 0, storage.ErrNotFound
	}

	for _, solved := range team.SolvedChallenges {
		if solved == challengeID {
			return team.Score, storage.ErrAlreadyExists
		}
	}

	team.SolvedChallenges = append(team.SolvedChallenges, challengeID)
	team.Score += points
	team.UpdatedAt = time.Now()
	return team.Score, nil
}

func cloneTeam(t *domain.Team) *domain.Team {
	c := *t
	c.Members = append([]domain.Member(nil), t.Members...)
	c.SolvedChallenges = append([]string(nil), t.SolvedChallenges...)
	return &c
}

// ChallengeStore implements in-memory challenge storage
type ChallengeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Challenge
}

func (s *ChallengeStore) Create(ctx context.Context, challenge *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[challenge.ID]; exists {
		return storage.ErrAlreadyExists
	}

	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = challenge.CreatedAt
	s.data[challenge.ID] = cloneChallenge(challenge)
	return nil
}

func (s *ChallengeStore) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	challenge, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneChallenge(challenge), nil
}

func (s *ChallengeStore) GetAll(ctx context.Context) ([]*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	challenges := make([]*domain.Challenge, 0, len(s.data))
	for _, challenge := range s.data {
		challenges = append(challenges, cloneChallenge(challenge))
	}
	return challenges, nil
}

func (s *ChallengeStore) GetVisible(ctx context.Context) ([]*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	challenges := make([]*domain.Challenge, 0)
	for _, challenge := range s.data {
		if challenge.Visible {
			challenges = append(challenges, cloneChallenge(challenge))
		}
	}
	return challenges, nil
}

func (s *ChallengeStore) Update(ctx context.Context, challenge *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[challenge.ID]
	if !exists {
		return storage.ErrNotFound
	}

	challenge.CreatedAt = existing.CreatedAt
	challenge.UpdatedAt = time.Now()
	s.data[challenge.ID] = cloneChallenge(challenge)
	return nil
}

func (s *ChallengeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, id)
	return nil
}

func (s *ChallengeStore) SetVisibility(ctx context.Context, id string, visible bool) (*domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	challenge.Visible = visible
	challenge.UpdatedAt = time.Now()
	return cloneChallenge(challenge), nil
}

func (s *ChallengeStore) AddSolver(ctx context.Context, id, teamDocID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	for _, solver := range challenge.SolvedBy {
		if solver == teamDocID {
			return storage.ErrAlreadyExists
		}
	}

	challenge.SolvedBy = append(challenge.SolvedBy, teamDocID)
	challenge.UpdatedAt = time.Now()
	return nil
}

func cloneChallenge(c *domain.Challenge) *domain.Challenge {
	cc := *c
	cc.SolvedBy = append([]string(nil), c.SolvedBy...)
	return &cc
}

// AdminStore implements in-memory admin storage
type AdminStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Admin
}

func (s *AdminStore) Create(ctx context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[admin.ID]; exists {
		return storage.ErrAlreadyExists
	}
	for _, a := range s.data {
		if a.Email == admin.Email {
			return storage.ErrAlreadyExists
		}
	}

	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	s.data[admin.ID] = admin
	return nil
}

func (s *AdminStore) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return admin, nil
}

func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, admin := range s.data {
		if admin.Email == email {
			return admin, nil
		}
	}
	return nil, storage.ErrNotFound
}
