package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/metrics"
	"github.com/ctfplayground/backend/internal/storage"
)

var (
	ErrAlreadySolved = errors.New("challenge already solved")
	ErrIncorrectFlag = errors.New("incorrect flag")
)

// SolveAnnouncer receives successful solves for fan-out to live feed
// clients. Announcements are best effort and must not block submission.
type SolveAnnouncer interface {
	AnnounceSolve(teamName, challengeName string, points, newScore int)
}

// SubmissionService is the scoring core. It accepts a (team, challenge,
// candidate flag) tuple and applies the at-most-once scoring rule.
type SubmissionService struct {
	store     storage.Store
	announcer SolveAnnouncer
	logger    *zap.Logger
}

// NewSubmissionService creates a new SubmissionService. announcer may be
// nil when no live feed is wired (tests, CLI).
func NewSubmissionService(store storage.Store, announcer SolveAnnouncer, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		store:     store,
		announcer: announcer,
		logger:    logger.Named("submission-service"),
	}
}

// Submit compares the candidate flag against the challenge secret and, on
// a first-time match, credits the team. The already-solved pre-check is a
// fast path only: the authoritative guard is the conditional add-if-absent
// write in TeamStore.RecordSolve, so concurrent duplicate submissions
// score at most once. Visibility is deliberately not checked: a team that
// knows a hidden challenge's ID may still submit.
func (s *SubmissionService) Submit(ctx context.Context, subjectID, challengeID, flag string) (*domain.SubmissionResult, error) {
	team, err := s.store.Teams().GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if team.HasSolved(challengeID) || challenge.IsSolvedBy(team.ID) {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeAlreadySolved).Inc()
		return nil, ErrAlreadySolved
	}

	// Exact, case-sensitive comparison. CTF flags are exact tokens; no
	// trimming, no fuzzy matching.
	if flag != challenge.Flag {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeIncorrect).Inc()
		s.logger.Info("Incorrect flag submitted",
			zap.String("team_name", team.TeamName),
			zap.String("challenge", challenge.Name),
			zap.String("submitted_flag", flag),
		)
		return nil, ErrIncorrectFlag
	}

	newScore, err := s.store.Teams().RecordSolve(ctx, team.ID, challengeID, challenge.Value)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// A concurrent submission won the conditional write.
			metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeAlreadySolved).Inc()
			return nil, ErrAlreadySolved
		}
		return nil, fmt.Errorf("failed to record solve: %w", err)
	}

	if err := s.store.Challenges().AddSolver(ctx, challengeID, team.ID); err != nil &&
		!errors.Is(err, storage.ErrAlreadyExists) {
		// The team-side write already succeeded, so the solve stands.
		// Log and continue rather than failing the submission.
		s.logger.Error("Failed to record solver on challenge",
			zap.String("challenge_id", challengeID),
			zap.String("team_id", team.TeamID),
			zap.Error(err),
		)
	}

	metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeCorrect).Inc()
	s.logger.Info("Flag solved",
		zap.String("team_name", team.TeamName),
		zap.String("challenge", challenge.Name),
		zap.String("submitted_flag", flag),
		zap.Int("points", challenge.Value),
		zap.Int("new_score", newScore),
	)

	if s.announcer != nil {
		s.announcer.AnnounceSolve(team.TeamName, challenge.Name, challenge.Value, newScore)
	}

	return &domain.SubmissionResult{
		Correct:  true,
		NewScore: newScore,
	}, nil
}
