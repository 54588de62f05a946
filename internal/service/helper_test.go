package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/storage/memory"
	"github.com/ctfplayground/backend/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		JWT: config.JWTConfig{
			Secret:           "test-secret-key-for-testing-only",
			Issuer:           "test-issuer",
			TeamExpiryHours:  1,
			AdminExpiryHours: 50,
		},
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newTestServices() (*Services, *memory.Store) {
	store := memory.NewStore()
	return NewServices(store, testConfig(), nil, testLogger()), store
}

// registerTestTeam registers a team and returns its credentials plus the
// stored document.
func registerTestTeam(t *testing.T, ctx context.Context, services *Services, name string) (*domain.RegisterTeamResponse, *domain.Team) {
	t.Helper()

	resp, err := services.Team.Register(ctx, &domain.RegisterTeamRequest{
		TeamName: name,
		Leader:   domain.Member{Name: "Leader", Email: "leader@example.org"},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	team, err := services.Auth.store.Teams().GetByTeamID(ctx, resp.TeamID)
	if err != nil {
		t.Fatalf("GetByTeamID() error = %v", err)
	}
	return resp, team
}

// createTestChallenge inserts a challenge and returns it
func createTestChallenge(t *testing.T, ctx context.Context, services *Services, name, flag string, value int) *domain.Challenge {
	t.Helper()

	challenge, err := services.Challenge.Create(ctx, &domain.CreateChallengeRequest{
		Name:        name,
		Author:      "tester",
		Description: "a test challenge",
		Category:    domain.CategoryWeb,
		Value:       value,
		Flag:        flag,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return challenge
}
