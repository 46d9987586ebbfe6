package store

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
)

// fakeColl implements scholarshipColl in memory. It understands exactly the
// filters and find options the store issues: _id lookups, the (name, _id)
// cursor $or, the updated_at cutoff, and skip/limit.
type fakeColl struct {
	docs  map[string]model.Scholarship
	seeks int // Find calls that carried a cursor filter
	skips int // Find calls that used an offset
}

func (f *fakeColl) sorted() []model.Scholarship {
	out := make([]model.Scholarship, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeColl) matches(d model.Scholarship, filter interface{}) bool {
	m, ok := filter.(bson.M)
	if !ok || len(m) == 0 {
		return true
	}
	if branches, ok := m["$or"].(bson.A); ok {
		for _, branch := range branches {
			if f.matches(d, branch) {
				return true
			}
		}
		return false
	}
	for key, want := range m {
		var have string
		switch key {
		case "name":
			have = d.Name
		case "_id":
			have = d.ID
		case "updated_at":
			cutoff := want.(bson.M)["$lt"].(time.Time)
			if !d.UpdatedAt.Before(cutoff) {
				return false
			}
			continue
		default:
			return false
		}
		switch cond := want.(type) {
		case string:
			if have != cond {
				return false
			}
		case bson.M:
			if have <= cond["$gt"].(string) {
				return false
			}
		}
	}
	return true
}

func (f *fakeColl) CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error) {
	return int64(len(f.docs)), nil
}

func (f *fakeColl) Find(_ context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	var skip, limit int64
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.Skip != nil {
			skip = *o.Skip
		}
		if o.Limit != nil {
			limit = *o.Limit
		}
	}
	if skip > 0 {
		f.skips++
	}
	if m, ok := filter.(bson.M); ok && m["$or"] != nil {
		f.seeks++
	}

	var hits []interface{}
	for _, d := range f.sorted() {
		if !f.matches(d, filter) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		hits = append(hits, d)
		if limit > 0 && int64(len(hits)) == limit {
			break
		}
	}
	return mongo.NewCursorFromDocuments(hits, nil, nil)
}

func (f *fakeColl) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	for _, d := range f.sorted() {
		if f.matches(d, filter) {
			return mongo.NewSingleResultFromDocument(d, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeColl) BulkWrite(_ context.Context, models []mongo.WriteModel, _ ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	for _, m := range models {
		rep, ok := m.(*mongo.ReplaceOneModel)
		if !ok {
			return nil, fmt.Errorf("unexpected write model %T", m)
		}
		id := rep.Filter.(bson.M)["_id"].(string)
		f.docs[id] = rep.Replacement.(model.Scholarship)
	}
	return &mongo.BulkWriteResult{}, nil
}

func (f *fakeColl) DeleteMany(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	var n int64
	for id, d := range f.docs {
		if f.matches(d, filter) {
			delete(f.docs, id)
			n++
		}
	}
	return &mongo.DeleteResult{DeletedCount: n}, nil
}

func newFakeStore() (*SyncStore, *fakeColl) {
	fc := &fakeColl{docs: make(map[string]model.Scholarship)}
	return &SyncStore{Log: zap.NewNop(), coll: fc}, fc
}

func seedSch(name, id, deadline string) model.Scholarship {
	return model.Scholarship{ID: id, Name: name, Deadline: deadline, Amount: 1000}
}

func TestSyncScholarships_SkipsUnresolvableDeadline(t *testing.T) {
	st, fc := newFakeStore()
	items := []model.Scholarship{
		seedSch("Alumni Grant", "a-1", "06/30/2026"),
		seedSch("Rolling Award", "b-1", "see website"),
		seedSch("Broken Row", "c-1", "Deadline TBA soon"),
	}
	require.NoError(t, st.SyncScholarships(context.Background(), items))

	require.Len(t, fc.docs, 2)
	require.NotContains(t, fc.docs, "c-1")
	require.Equal(t, "2026-06-30", fc.docs["a-1"].Deadline)
	require.Equal(t, model.DeadlineSentinel, fc.docs["b-1"].Deadline)
	require.False(t, fc.docs["a-1"].UpdatedAt.IsZero())
}

func TestSyncScholarships_RescrapeReplacesInPlace(t *testing.T) {
	st, fc := newFakeStore()
	ctx := context.Background()
	items := []model.Scholarship{seedSch("Alumni Grant", "a-1", "06/30/2026")}
	require.NoError(t, st.SyncScholarships(ctx, items))

	items[0].Amount = 2500
	require.NoError(t, st.SyncScholarships(ctx, items))

	total, err := st.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, 2500, fc.docs["a-1"].Amount)
}

// seven listings including duplicate names; (name, _id) order is
// a-1 a-2 b-1 c-1 d-0 d-1 e-1
func seedRoster(t *testing.T, st *SyncStore) {
	t.Helper()
	items := []model.Scholarship{
		seedSch("Arts Award", "a-2", ""),
		seedSch("Arts Award", "a-1", ""),
		seedSch("Business Award", "b-1", ""),
		seedSch("Civics Award", "c-1", ""),
		seedSch("Drama Award", "d-1", ""),
		seedSch("Drama Award", "d-0", ""),
		seedSch("Energy Award", "e-1", ""),
	}
	require.NoError(t, st.SyncScholarships(context.Background(), items))
}

func pageIDs(items []model.Scholarship) []string {
	ids := make([]string, len(items))
	for i, sch := range items {
		ids[i] = sch.ID
	}
	return ids
}

func TestPager_PageSuccession(t *testing.T) {
	st, fc := newFakeStore()
	seedRoster(t, st)
	ctx := context.Background()

	p := st.NewPager(3)
	var got []string
	for page := 1; page <= 3; page++ {
		items, total, err := p.ReadPage(ctx, page)
		require.NoError(t, err)
		require.EqualValues(t, 7, total)
		got = append(got, pageIDs(items)...)
	}

	// disjoint, contiguous, name-ordered with _id breaking ties
	require.Equal(t, []string{"a-1", "a-2", "b-1", "c-1", "d-0", "d-1", "e-1"}, got)
	require.Equal(t, 2, fc.seeks)
	require.Zero(t, fc.skips)
}

func TestPager_ColdStartSkipFallback(t *testing.T) {
	st, fc := newFakeStore()
	seedRoster(t, st)
	ctx := context.Background()

	warm := st.NewPager(3)
	_, _, err := warm.ReadPage(ctx, 1)
	require.NoError(t, err)
	seeked, _, err := warm.ReadPage(ctx, 2)
	require.NoError(t, err)

	// no cached cursor for page 1, so this walks by offset instead
	cold := st.NewPager(3)
	skipped, total, err := cold.ReadPage(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 7, total)
	require.Equal(t, pageIDs(seeked), pageIDs(skipped))
	require.Equal(t, 1, fc.skips)
}

func TestPager_EmptyStore(t *testing.T) {
	st, _ := newFakeStore()
	items, total, err := st.NewPager(3).ReadPage(context.Background(), 1)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, items)
}

func TestPurgeStale(t *testing.T) {
	st, fc := newFakeStore()
	ctx := context.Background()

	old := seedSch("Old Award", "o-1", "")
	old.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := seedSch("Fresh Award", "f-1", "")
	fresh.UpdatedAt = time.Now().UTC()
	fc.docs[old.ID] = old
	fc.docs[fresh.ID] = fresh

	n, err := st.PurgeStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.NotContains(t, fc.docs, "o-1")
	require.Contains(t, fc.docs, "f-1")

	// zero horizon disables purging
	n, err = st.PurgeStale(ctx, 0)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Len(t, fc.docs, 1)
}

func TestGetByID(t *testing.T) {
	st, _ := newFakeStore()
	ctx := context.Background()
	require.NoError(t, st.SyncScholarships(ctx, []model.Scholarship{seedSch("Alumni Grant", "a-1", "")}))

	sch, err := st.GetByID(ctx, "a-1")
	require.NoError(t, err)
	require.Equal(t, "Alumni Grant", sch.Name)

	_, err = st.GetByID(ctx, "missing")
	require.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestChunkScholarships(t *testing.T) {
	items := make([]model.Scholarship, 1203)
	for i := range items {
		items[i].ID = fmt.Sprintf("s-%d", i)
	}

	chunks := chunkScholarships(items, 500)
	require.Len(t, chunks, 3)
	require.Len(t, chunks[0], 500)
	require.Len(t, chunks[1], 500)
	require.Len(t, chunks[2], 203)

	// order preserved, nothing dropped or duplicated
	require.Equal(t, "s-0", chunks[0][0].ID)
	require.Equal(t, "s-500", chunks[1][0].ID)
	require.Equal(t, "s-1202", chunks[2][202].ID)
}

func TestChunkScholarships_Edges(t *testing.T) {
	require.Nil(t, chunkScholarships(nil, 500))
	require.Nil(t, chunkScholarships(make([]model.Scholarship, 3), 0))

	chunks := chunkScholarships(make([]model.Scholarship, 500), 500)
	require.Len(t, chunks, 1)
	require.Len(t, chunks[0], 500)
}
