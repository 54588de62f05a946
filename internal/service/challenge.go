package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/storage"
)

var ErrInvalidCategory = errors.New("invalid challenge category")

// ChallengeService handles catalog reads and administrative challenge
// management.
type ChallengeService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewChallengeService creates a new ChallengeService
func NewChallengeService(store storage.Store, logger *zap.Logger) *ChallengeService {
	return &ChallengeService{
		store:  store,
		logger: logger.Named("challenge-service"),
	}
}

// ListVisible returns the public catalog: visible challenges only, flag
// secret and audit fields stripped.
func (s *ChallengeService) ListVisible(ctx context.Context) ([]*domain.ChallengeView, error) {
	challenges, err := s.store.Challenges().GetVisible(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.ChallengeView, 0, len(challenges))
	for _, c := range challenges {
		views = append(views, c.View())
	}
	return views, nil
}

// ListAll returns every challenge including hidden ones and flags.
// Admin-only.
func (s *ChallengeService) ListAll(ctx context.Context) ([]*domain.Challenge, error) {
	return s.store.Challenges().GetAll(ctx)
}

// Create creates a challenge. Admin-only.
func (s *ChallengeService) Create(ctx context.Context, req *domain.CreateChallengeRequest) (*domain.Challenge, error) {
	if !domain.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	if req.Value <= 0 || req.Name == "" || req.Flag == "" {
		return nil, storage.ErrInvalidInput
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	challenge := &domain.Challenge{
		ID:          domain.NewChallengeID(),
		Name:        req.Name,
		Author:      req.Author,
		Description: req.Description,
		Category:    req.Category,
		Value:       req.Value,
		Flag:        req.Flag,
		FileURL:     req.FileURL,
		Visible:     visible,
		SolvedBy:    []string{},
	}

	if err := s.store.Challenges().Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.logger.Info("Challenge created",
		zap.String("challenge_id", challenge.ID),
		zap.String("name", challenge.Name),
		zap.Int("value", challenge.Value),
	)
	return challenge, nil
}

// Update applies a partial edit to a challenge. Admin-only. Solver set and
// audit fields are not editable through this path.
func (s *ChallengeService) Update(ctx context.Context, id string, req *domain.UpdateChallengeRequest) (*domain.Challenge, error) {
	challenge, err := s.store.Challenges().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		challenge.Name = *req.Name
	}
	if req.Author != nil {
		challenge.Author = *req.Author
	}
	if req.Description != nil {
		challenge.Description = *req.Description
	}
	if req.Category != nil {
		if !domain.ValidCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		challenge.Category = *req.Category
	}
	if req.Value != nil {
		if *req.Value <= 0 {
			return nil, storage.ErrInvalidInput
		}
		challenge.Value = *req.Value
	}
	if req.Flag != nil {
		if *req.Flag == "" {
			return nil, storage.ErrInvalidInput
		}
		challenge.Flag = *req.Flag
	}
	if req.FileURL != nil {
		challenge.FileURL = *req.FileURL
	}
	if req.Visible != nil {
		challenge.Visible = *req.Visible
	}

	if err := s.store.Challenges().Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}

	s.logger.Info("Challenge updated", zap.String("challenge_id", id))
	return challenge, nil
}

// Delete removes a challenge. Admin-only; the handler re-checks the admin
// password before calling this.
func (s *ChallengeService) Delete(ctx context.Context, id string) (*domain.Challenge, error) {
	challenge, err := s.store.Challenges().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Challenges().Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("Challenge deleted",
		zap.String("challenge_id", id),
		zap.String("name", challenge.Name),
	)
	return challenge, nil
}

// SetVisibility toggles whether a challenge appears in the public catalog.
// Hidden challenges stay submittable by ID.
func (s *ChallengeService) SetVisibility(ctx context.Context, id string, visible bool) (*domain.Challenge, error) {
	challenge, err := s.store.Challenges().SetVisibility(ctx, id, visible)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Challenge visibility toggled",
		zap.String("challenge_id", id),
		zap.Bool("visible", visible),
	)
	return challenge, nil
}
