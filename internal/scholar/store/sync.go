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

// bulkWriteChunkSize caps documents per bulk upsert; large scrapes commit in
// several transactions rather than one oversized write.
const bulkWriteChunkSize = 500

// scholarshipColl is the slice of *mongo.Collection the store and pager
// touch. Tests substitute an in-memory implementation.
type scholarshipColl interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// SyncStore owns the scholarships collection: bulk upserts on the write path,
// name-ordered cursor pagination on the read path.
type SyncStore struct {
	Log  *zap.Logger
	coll scholarshipColl
}

func NewSyncStore(log *zap.Logger, stores *Stores) *SyncStore {
	return &SyncStore{Log: log, coll: stores.Scholarships}
}

// SyncScholarships upserts the aggregated scrape result keyed by id, in
// chunks. Records whose deadline no longer resolves to a date or the
// sentinel are write-skipped; persisted documents always carry a usable
// deadline. Each upsert refreshes updated_at so stale docs age out.
func (s *SyncStore) SyncScholarships(ctx context.Context, items []model.Scholarship) error {
	writable := make([]model.Scholarship, 0, len(items))
	now := time.Now().UTC()
	for _, sch := range items {
		deadline, ok := model.ResolveDeadline(sch.Deadline)
		if !ok {
			s.Log.Debug("write-skipped scholarship with unresolvable deadline",
				zap.String("id", sch.ID),
				zap.String("deadline", sch.Deadline),
			)
			continue
		}
		sch.Deadline = deadline
		sch.UpdatedAt = now
		writable = append(writable, sch)
	}

	for i, chunk := range chunkScholarships(writable, bulkWriteChunkSize) {
		models := make([]mongo.WriteModel, 0, len(chunk))
		for _, sch := range chunk {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": sch.ID}).
				SetReplacement(sch).
				SetUpsert(true))
		}
		opts := options.BulkWrite().SetOrdered(false)
		if _, err := s.coll.BulkWrite(ctx, models, opts); err != nil {
			return fmt.Errorf("bulk write chunk %d: %w", i, err)
		}
	}

	s.Log.Info("store sync complete",
		zap.Int("scraped", len(items)),
		zap.Int("written", len(writable)),
	)
	return nil
}

func chunkScholarships(items []model.Scholarship, size int) [][]model.Scholarship {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	var chunks [][]model.Scholarship
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// GetByID fetches one scholarship document.
func (s *SyncStore) GetByID(ctx context.Context, id string) (model.Scholarship, error) {
	var sch model.Scholarship
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sch); err != nil {
		return model.Scholarship{}, fmt.Errorf("get scholarship %s: %w", id, err)
	}
	return sch, nil
}

// Count is the dedicated total query; zero is the "store empty" signal the
// retrieval fallback chain keys off, not an error.
func (s *SyncStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// PurgeStale deletes documents not refreshed within the horizon. Listings
// that vanish upstream stop being upserted, so their updated_at freezes and
// they age out here. Returns the number removed.
func (s *SyncStore) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.coll.DeleteMany(ctx, bson.M{"updated_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("purge stale: %w", err)
	}
	return res.DeletedCount, nil
}

// pageCursor pins the last document of a visited page; (name, _id) because
// names are not unique.
type pageCursor struct {
	name string
	id   string
}

// Pager reads name-ordered pages and remembers the trailing cursor of every
// page it has served, so moving to page N+1 is a seek, not a skip. Pagers are
// scoped to one session/request chain; cursor state is never shared module
// state.
type Pager struct {
	store    *SyncStore
	pageSize int
	cursors  map[int]pageCursor
}

func (s *SyncStore) NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Pager{store: s, pageSize: pageSize, cursors: make(map[int]pageCursor)}
}

// ReadPage returns page (1-based) ordered lexicographically by name, plus the
// total count. With a cached cursor for the previous page it resumes from
// there; on a cold start it falls back to an offset walk from the beginning,
// which is slower but always lands on the same slice.
func (p *Pager) ReadPage(ctx context.Context, page int) ([]model.Scholarship, int64, error) {
	if page <= 0 {
		page = 1
	}

	total, err := p.store.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count scholarships: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	sort := bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	opts := options.Find().SetSort(sort).SetLimit(int64(p.pageSize))

	filter := bson.M{}
	if page > 1 {
		if cur, ok := p.cursors[page-1]; ok {
			filter = bson.M{"$or": bson.A{
				bson.M{"name": bson.M{"$gt": cur.name}},
				bson.M{"name": cur.name, "_id": bson.M{"$gt": cur.id}},
			}}
		} else {
			opts.SetSkip(int64((page - 1) * p.pageSize))
		}
	}

	cur, err := p.store.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("read page %d: %w", page, err)
	}
	var items []model.Scholarship
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode page %d: %w", page, err)
	}

	if len(items) > 0 {
		last := items[len(items)-1]
		p.cursors[page] = pageCursor{name: last.Name, id: last.ID}
	}
	return items, total, nil
}
