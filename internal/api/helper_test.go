package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/service"
	"github.com/ctfplayground/backend/internal/storage/memory"
	"github.com/ctfplayground/backend/pkg/config"
	"github.com/ctfplayground/backend/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret-key-for-testing-only",
			Issuer:           "test-issuer",
			TeamExpiryHours:  1,
			AdminExpiryHours: 50,
		},
	}
}

// testRouter wires the full route table against a memory store, without
// rate limiting so tests can hammer endpoints freely.
func testRouter(t *testing.T) (*gin.Engine, *service.Services) {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	services := service.NewServices(store, testConfig(), nil, logger)

	handlers := NewHandlers(services, nil, logger)
	adminHandlers := NewAdminHandlers(services, logger)

	requireUser := middleware.RequireRole(services.Token, domain.RoleUser, logger)
	requireSudo := middleware.RequireRole(services.Token, domain.RoleSudo, logger)

	router := gin.New()
	router.GET("/status", handlers.Status)
	router.POST("/auth/login", handlers.LoginTeam)
	router.GET("/auth/get-team", requireUser, handlers.GetTeam)
	router.GET("/challenges", requireUser, handlers.ListChallenges)
	router.GET("/challenges/solved", requireUser, handlers.ListSolved)
	router.POST("/challenges/submit", requireUser, handlers.SubmitFlag)
	router.GET("/leaderboard", middleware.OptionalAuth(services.Token, logger), handlers.Leaderboard)

	router.POST("/admin/login", adminHandlers.Login)
	admin := router.Group("/admin", requireSudo)
	admin.POST("/registerTeam", adminHandlers.RegisterTeam)
	admin.GET("/teams", adminHandlers.ListTeams)
	admin.POST("/challenges", adminHandlers.CreateChallenge)
	admin.GET("/challenges", adminHandlers.ListChallenges)
	admin.PUT("/challenges/:id", adminHandlers.UpdateChallenge)
	admin.DELETE("/challenges/:id", adminHandlers.DeleteChallenge)
	admin.PATCH("/challenges/toggleVisibility", adminHandlers.ToggleVisibility)

	return router, services
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

// setupTeam registers a team and logs it in, returning the bearer token
// and generated credentials.
func setupTeam(t *testing.T, services *service.Services, name string) (token string, creds *domain.RegisterTeamResponse) {
	t.Helper()
	ctx := context.Background()

	creds, err := services.Team.Register(ctx, &domain.RegisterTeamRequest{
		TeamName: name,
		Leader:   domain.Member{Name: "Leader", Email: "leader@example.org"},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, token, err = services.Auth.LoginTeam(ctx, creds.TeamID, creds.Password)
	if err != nil {
		t.Fatalf("LoginTeam() error = %v", err)
	}
	return token, creds
}

// setupAdmin creates an admin and logs it in
func setupAdmin(t *testing.T, services *service.Services) (token string) {
	t.Helper()
	ctx := context.Background()

	if _, err := services.Auth.CreateAdmin(ctx, "Jury", "jury@example.org", "hunter22"); err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}
	_, token, err := services.Auth.LoginAdmin(ctx, "jury@example.org", "hunter22")
	if err != nil {
		t.Fatalf("LoginAdmin() error = %v", err)
	}
	return token
}

// setupChallenge inserts a challenge directly through the service layer
func setupChallenge(t *testing.T, services *service.Services, name, flag string, value int) *domain.Challenge {
	t.Helper()

	challenge, err := services.Challenge.Create(context.Background(), &domain.CreateChallengeRequest{
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

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}
