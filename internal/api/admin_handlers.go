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

// AdminHandlers contains handlers for the admin API surface
type AdminHandlers struct {
	services *service.Services
	logger   *zap.Logger
}

// NewAdminHandlers creates a new AdminHandlers instance
func NewAdminHandlers(services *service.Services, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{
		services: services,
		logger:   logger.Named("admin"),
	}
}

// Login handles admin login
func (h *AdminHandlers) Login(c *gin.Context) {
	var req domain.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "email and password are required",
		})
		return
	}

	admin, token, err := h.services.Auth.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("admin", "failure").Inc()
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid Credentials",
			})
			return
		}
		h.logger.Error("Admin login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	metrics.LoginsTotal.WithLabelValues("admin", "success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"token":   token,
		"user": userPayload{
			ID:   admin.ID,
			Name: admin.Name,
			Role: string(admin.Role),
		},
	})
}

// RegisterTeam provisions a team and returns its generated credentials.
// The plaintext password appears in this response only.
func (h *AdminHandlers) RegisterTeam(c *gin.Context) {
	var req domain.RegisterTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "teamName and leader are required",
		})
		return
	}

	resp, err := h.services.Team.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamExists):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Team name already registered",
			})
		case errors.Is(err, service.ErrTooManyMembers), errors.Is(err, storage.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
			})
		default:
			h.logger.Error("Failed to register team", zap.String("team_name", req.TeamName), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Team registered",
		"teamId":   resp.TeamID,
		"teamName": resp.TeamName,
		"password": resp.Password,
	})
}

// ListTeams returns all registered teams without credentials
func (h *AdminHandlers) ListTeams(c *gin.Context) {
	teams, err := h.services.Team.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list teams", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Teams fetched",
		"teams":   teams,
	})
}

// CreateChallenge adds a challenge to the catalog
func (h *AdminHandlers) CreateChallenge(c *gin.Context) {
	var req domain.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "name, author, description, category, value and flag are required",
		})
		return
	}

	challenge, err := h.services.Challenge.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, storage.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}
		h.logger.Error("Failed to create challenge", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Challenge created",
		"challenge": challenge,
	})
}

// ListChallenges returns every challenge including hidden ones, flags
// included. Admin eyes only.
func (h *AdminHandlers) ListChallenges(c *gin.Context) {
	challenges, err := h.services.Challenge.ListAll(c.Request.Context())
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

// UpdateChallenge applies a partial edit to a challenge
func (h *AdminHandlers) UpdateChallenge(c *gin.Context) {
	id := c.Param("id")

	var req domain.UpdateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid request body",
		})
		return
	}

	challenge, err := h.services.Challenge.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Challenge not found",
			})
		case errors.Is(err, service.ErrInvalidCategory), errors.Is(err, storage.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
			})
		default:
			h.logger.Error("Failed to update challenge", zap.String("challenge_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Challenge updated",
		"challenge": challenge,
	})
}

// deleteChallengeRequest carries the password re-check for deletion
type deleteChallengeRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteChallenge removes a challenge. The caller must present their
// admin password again; a stolen session token alone is not enough.
func (h *AdminHandlers) DeleteChallenge(c *gin.Context) {
	id := c.Param("id")

	var req deleteChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "password is required",
		})
		return
	}

	adminID := c.GetString(middleware.CtxSubjectID)
	if err := h.services.Auth.VerifyAdminPassword(c.Request.Context(), adminID, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("Challenge deletion rejected: password re-check failed",
				zap.String("admin_id", adminID),
				zap.String("challenge_id", id),
			)
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid Credentials",
			})
			return
		}
		h.logger.Error("Password re-check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	challenge, err := h.services.Challenge.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Challenge not found",
			})
			return
		}
		h.logger.Error("Failed to delete challenge", zap.String("challenge_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Challenge deleted",
		"challenge": challenge,
	})
}

// toggleVisibilityRequest flips a challenge between listed and hidden
type toggleVisibilityRequest struct {
	ChallengeID string `json:"challengeId" binding:"required"`
	Visible     *bool  `json:"visible" binding:"required"`
}

// ToggleVisibility sets whether a challenge appears in the public catalog
func (h *AdminHandlers) ToggleVisibility(c *gin.Context) {
	var req toggleVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "challengeId and visible are required",
		})
		return
	}

	challenge, err := h.services.Challenge.SetVisibility(c.Request.Context(), req.ChallengeID, *req.Visible)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Challenge not found",
			})
			return
		}
		h.logger.Error("Failed to toggle visibility", zap.String("challenge_id", req.ChallengeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Challenge visibility updated",
		"challenge": challenge,
	})
}
