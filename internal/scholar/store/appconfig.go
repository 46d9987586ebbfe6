package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const geminiKeyDoc = "gemini_api_key"

type appConfigRecord struct {
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// AppConfigStore reads operator-managed settings (currently just the Gemini
// API key) from the config collection. The key is cached in the struct after
// the first read; UpdateGeminiKey refreshes both the document and the cache.
type AppConfigStore struct {
	coll *mongo.Collection

	mu        sync.Mutex
	cachedKey string
}

func NewAppConfigStore(stores *Stores) *AppConfigStore {
	return &AppConfigStore{coll: stores.AppConfig}
}

func (a *AppConfigStore) GeminiKey(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cachedKey != "" {
		return a.cachedKey, nil
	}

	var rec appConfigRecord
	err := a.coll.FindOne(ctx, bson.M{"_id": geminiKeyDoc}).Decode(&rec)
	if err != nil {
		return "", fmt.Errorf("load gemini api key: %w", err)
	}
	if rec.Value == "" {
		return "", fmt.Errorf("gemini api key record is empty")
	}
	a.cachedKey = rec.Value
	return rec.Value, nil
}

func (a *AppConfigStore) UpdateGeminiKey(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := bson.M{
		"_id":        geminiKeyDoc,
		"key":        geminiKeyDoc,
		"value":      key,
		"updated_at": time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := a.coll.ReplaceOne(ctx, bson.M{"_id": geminiKeyDoc}, rec, opts); err != nil {
		return fmt.Errorf("update gemini api key: %w", err)
	}
	a.cachedKey = key
	return nil
}
