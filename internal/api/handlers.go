package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/metrics"
	"github.com/ctfplayground/backend/internal/service"
	"github.com/ctfplayground/backend/internal/storage"
	"github.com/ctfplayground/backend/pkg/middleware"
)

// Handlers aggregates the public and team-facing HTTP handlers
type Handlers struct {
	services *service.Services
	logins   *middleware.LoginLimiter
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance. logins may be nil when
// login throttling is disabled.
func NewHandlers(services *service.Services, logins *middleware.LoginLimiter, logger *zap.Logger) *Handlers {
	return &Handlers{
		services: services,
		logins:   logins,
		logger:   logger.Named("handlers"),
	}
}

// Status handles the /status and /health endpoints
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ctf-backend",
	})
}

// userPayload is the token-bearing login response body
type userPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// LoginTeam handles team login with generated credentials
func (h *Handlers) LoginTeam(c *gin.Context) {
	var req domain.TeamLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "teamId and password are required",
		})
		return
	}

	team, token, err := h.services.Auth.LoginTeam(c.Request.Context(), req.TeamID, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("team", "failure").Inc()
		if h.logins != nil {
			h.logins.RecordFailure(c.ClientIP())
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid Credentials",
			})
			return
		}
		h.logger.Error("Team login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	metrics.LoginsTotal.WithLabelValues("team", "success").Inc()
	if h.logins != nil {
		h.logins.RecordSuccess(c.ClientIP())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"token":   token,
		"user": userPayload{
			ID:   team.TeamID,
			Name: team.TeamName,
			Role: string(domain.RoleUser),
		},
	})
}

// GetTeam returns the authenticated team's profile
func (h *Handlers) GetTeam(c *gin.Context) {
	subjectID := c.GetString(middleware.CtxSubjectID)

	profile, err := h.services.Team.Get(c.Request.Context(), subjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Team not found",
			})
			return
		}
		h.logger.Error("Failed to load team", zap.String("subject_id", subjectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Team fetched",
		"teamName": profile.TeamName,
		"leader":   profile.Leader,
		"members":  profile.Members,
	})
}

// ListChallenges returns the visible challenge catalog, flags stripped
func (h *Handlers) ListChallenges(c *gin.Context) {
	challenges, err := h.services.Challenge.ListVisible(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list challenges", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Challenges fetched",
		"challenges": challenges,
	})
}

// ListSolved returns the IDs of challenges the team has solved
func (h *Handlers) ListSolved(c *gin.Context) {
	subjectID := c.GetString(middleware.CtxSubjectID)

	solved, err := h.services.Team.ListSolved(c.Request.Context(), subjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Team not found",
			})
			return
		}
		h.logger.Error("Failed to list solved challenges", zap.String("subject_id", subjectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Solved challenges fetched",
		"solved":  solved,
	})
}

// SubmitFlag handles flag submission for the authenticated team
func (h *Handlers) SubmitFlag(c *gin.Context) {
	var req domain.SubmitFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "challengeId and flag are required",
		})
		return
	}

	subjectID := c.GetString(middleware.CtxSubjectID)

	result, err := h.services.Submission.Submit(c.Request.Context(), subjectID, req.ChallengeID, req.Flag)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIncorrectFlag):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Incorrect flag",
				"correct": false,
			})
		case errors.Is(err, service.ErrAlreadySolved):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Challenge already solved",
				"correct": false,
			})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Challenge not found",
			})
		default:
			h.logger.Error("Flag submission failed",
				zap.String("subject_id", subjectID),
				zap.String("challenge_id", req.ChallengeID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Correct flag",
		"correct":  result.Correct,
		"newScore": result.NewScore,
	})
}

// Leaderboard returns the current ranking. When the caller presented a
// valid team token, its own row is included as currentUser.
func (h *Handlers) Leaderboard(c *gin.Context) {
	subjectID := c.GetString(middleware.CtxSubjectID)

	board, err := h.services.Leaderboard.Project(c.Request.Context(), subjectID)
	if err != nil {
		h.logger.Error("Failed to project leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	resp := gin.H{
		"success":     true,
		"message":     "Leaderboard fetched",
		"leaderboard": board.Entries,
	}
	if board.CurrentUser != nil {
		resp["currentUser"] = board.CurrentUser
	}

	c.JSON(http.StatusOK, resp)
}
