package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/storage"
)

// Leaderboard is a projected ranking. CurrentUser is set when the caller
// supplied a valid team token.
type Leaderboard struct {
	Entries     []*domain.LeaderboardEntry
	CurrentUser *domain.LeaderboardEntry
}

// LeaderboardService derives the ranking from team scores on demand.
// Nothing is cached: every call re-reads the store.
type LeaderboardService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(store storage.Store, logger *zap.Logger) *LeaderboardService {
	return &LeaderboardService{
		store:  store,
		logger: logger.Named("leaderboard-service"),
	}
}

// Project reads all teams and assigns dense 1-based ranks by score
// descending. Ties break by earliest registration, then by credential
// identifier so the order is deterministic. subjectID may be empty; when
// it matches a team, that team's row is returned as CurrentUser.
func (s *LeaderboardService) Project(ctx context.Context, subjectID string) (*Leaderboard, error) {
	teams, err := s.store.Teams().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Score != teams[j].Score {
			return teams[i].Score > teams[j].Score
		}
		if !teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].CreatedAt.Before(teams[j].CreatedAt)
		}
		return teams[i].TeamID < teams[j].TeamID
	})

	board := &Leaderboard{
		Entries: make([]*domain.LeaderboardEntry, 0, len(teams)),
	}
	for i, team := range teams {
		entry := &domain.LeaderboardEntry{
			Rank:   i + 1,
			Name:   team.TeamName,
			TeamID: team.TeamID,
			Score:  team.Score,
		}
		board.Entries = append(board.Entries, entry)
		if subjectID != "" && team.ID == subjectID {
			board.CurrentUser = entry
		}
	}

	return board, nil
}
