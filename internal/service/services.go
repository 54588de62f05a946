// Package service contains the application's business logic: token
// issuance, authentication, team registration, the challenge catalog, the
// scoring core and the leaderboard projection. Handlers stay thin and all
// invariants live here or in the storage layer.
package service

import (
	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/storage"
	"github.com/ctfplayground/backend/pkg/config"
)

// Services aggregates all application services
type Services struct {
	Token       *TokenService
	Auth        *AuthService
	Team        *TeamService
	Challenge   *ChallengeService
	Submission  *SubmissionService
	Leaderboard *LeaderboardService
}

// NewServices creates all services. announcer may be nil.
func NewServices(store storage.Store, cfg *config.Config, announcer SolveAnnouncer, logger *zap.Logger) *Services {
	tokens := NewTokenService(&cfg.JWT)
	return &Services{
		Token:       tokens,
		Auth:        NewAuthService(store, tokens, logger),
		Team:        NewTeamService(store, logger),
		Challenge:   NewChallengeService(store, logger),
		Submission:  NewSubmissionService(store, announcer, logger),
		Leaderboard: NewLeaderboardService(store, logger),
	}
}
