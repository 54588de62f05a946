package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/storage"
)

// TeamStore implements MongoDB team storage
type TeamStore struct {
	collection *mongo.Collection
}

func (s *TeamStore) Create(ctx context.Context, team *domain.Team) error {
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt

	_, err := s.collection.InsertOne(ctx, team)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (s *TeamStore) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *TeamStore) GetByTeamID(ctx context.Context, teamID string) (*domain.Team, error) {
	return s.findOne(ctx, bson.M{"team_id": teamID})
}

func (s *TeamStore) GetByName(ctx context.Context, teamName string) (*domain.Team, error) {
	return s.findOne(ctx, bson.M{"team_name": teamName})
}

func (s *TeamStore) findOne(ctx context.Context, filter bson.M) (*domain.Team, error) {
	var team domain.Team
	err := s.collection.FindOne(ctx, filter).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

func (s *TeamStore) GetAll(ctx context.Context) ([]*domain.Team, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var teams []*domain.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return teams, nil
}

// RecordSolve closes the double-score race at the write: the filter only
// matches when the solved set does not yet contain the challenge, and the
// $addToSet plus $inc apply in the same document update. Two concurrent
// submissions from one team can match the filter at most once.
func (s *TeamStore) RecordSolve(ctx context.Context, id, challengeID string, points int) (int, error) {
	filter := bson.M{
		"_id":               id,
		"solved_challenges": bson.M{"$ne": challengeID},
	}
	update := bson.M{
		"$addToSet": bson.M{"solved_challenges": challengeID},
		"$inc":      bson.M{"score": points},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	var team domain.Team
	err := s.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&team)
	if err == nil {
		return team.Score, nil
	}
	if err != mongo.ErrNoDocuments {
		return 0, fmt.Errorf("failed to record solve: %w", err)
	}

	// No match: either the team does not exist or the challenge is already
	// in the solved set. Distinguish with a plain lookup.
	existing, lookupErr := s.GetByID(ctx, id)
	if lookupErr != nil {
		return 0, lookupErr
	}
	return existing.Score, storage.ErrAlreadyExists
}
