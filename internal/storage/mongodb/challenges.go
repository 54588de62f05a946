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

// ChallengeStore implements MongoDB challenge storage
type ChallengeStore struct {
	collection *mongo.Collection
}

func (s *ChallengeStore) Create(ctx context.Context, challenge *domain.Challenge) error {
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = challenge.CreatedAt

	_, err := s.collection.InsertOne(ctx, challenge)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

func (s *ChallengeStore) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	var challenge domain.Challenge
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&challenge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return &challenge, nil
}

func (s *ChallengeStore) GetAll(ctx context.Context) ([]*domain.Challenge, error) {
	return s.find(ctx, bson.M{})
}

func (s *ChallengeStore) GetVisible(ctx context.Context) ([]*domain.Challenge, error) {
	return s.find(ctx, bson.M{"visible": true})
}

func (s *ChallengeStore) find(ctx context.Context, filter bson.M) ([]*domain.Challenge, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenges: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var challenges []*domain.Challenge
	if err := cursor.All(ctx, &challenges); err != nil {
		return nil, fmt.Errorf("failed to decode challenges: %w", err)
	}
	return challenges, nil
}

func (s *ChallengeStore) Update(ctx context.Context, challenge *domain.Challenge) error {
	challenge.UpdatedAt = time.Now()
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": challenge.ID}, challenge)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *ChallengeStore) Delete(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if result.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *ChallengeStore) SetVisibility(ctx context.Context, id string, visible bool) (*domain.Challenge, error) {
	update := bson.M{"$set": bson.M{"visible": visible, "updated_at": time.Now()}}

	var challenge domain.Challenge
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&challenge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to set visibility: %w", err)
	}
	return &challenge, nil
}

// AddSolver mirrors TeamStore.RecordSolve on the challenge side: the $ne
// filter makes the add-if-absent a single conditional write.
func (s *ChallengeStore) AddSolver(ctx context.Context, id, teamDocID string) error {
	filter := bson.M{
		"_id":       id,
		"solved_by": bson.M{"$ne": teamDocID},
	}
	update := bson.M{
		"$addToSet": bson.M{"solved_by": teamDocID},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add solver: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return storage.ErrAlreadyExists
	}
	return nil
}
