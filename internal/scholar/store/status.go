package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
)

// StatusStore tracks applied/hidden marks per user. One record per
// (user, scholarship) pair, upsert semantics, no history. Mutual exclusion
// between the two statuses is the API layer's job.
type StatusStore struct {
	Log  *zap.Logger
	coll *mongo.Collection
}

func NewStatusStore(log *zap.Logger, stores *Stores) *StatusStore {
	return &StatusStore{Log: log, coll: stores.UserStatus}
}

func pairFilter(userID, scholarshipID string) bson.M {
	return bson.M{"user_id": userID, "scholarship_id": scholarshipID}
}

// SetStatus upserts the pair's record, overwriting any previous status.
func (s *StatusStore) SetStatus(ctx context.Context, userID, scholarshipID string, status model.Status) error {
	record := model.UserScholarshipStatus{
		UserID:        userID,
		ScholarshipID: scholarshipID,
		Status:        status,
		MarkedAt:      time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, pairFilter(userID, scholarshipID), record, opts); err != nil {
		return fmt.Errorf("set status %s/%s: %w", userID, scholarshipID, err)
	}
	return nil
}

// ClearStatus removes the pair's record; clearing an unmarked pair is a no-op.
func (s *StatusStore) ClearStatus(ctx context.Context, userID, scholarshipID string) error {
	if _, err := s.coll.DeleteOne(ctx, pairFilter(userID, scholarshipID)); err != nil {
		return fmt.Errorf("clear status %s/%s: %w", userID, scholarshipID, err)
	}
	return nil
}

// ListByStatus returns the scholarship ids a user has marked with status.
func (s *StatusStore) ListByStatus(ctx context.Context, userID string, status model.Status) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{"user_id": userID, "status": status})
	if err != nil {
		return nil, fmt.Errorf("list %s for %s: %w", status, userID, err)
	}
	var records []model.UserScholarshipStatus
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode %s for %s: %w", status, userID, err)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ScholarshipID)
	}
	return ids, nil
}
