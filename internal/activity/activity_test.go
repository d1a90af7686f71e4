package activity

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/db"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

func newSQLStore(t *testing.T) Store {
	t.Helper()
	store, _ := newSQLStoreWithPool(t)
	return store
}

func newSQLStoreWithPool(t *testing.T) (Store, *db.Pool) {
	t.Helper()
	pool, err := db.OpenSQLiteSingle(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	store, err := Provide(pool.Writer(), pool.Reader())
	require.NoError(t, err)
	return store, pool
}

func TestRecorderAndSink_PersistThroughBus(t *testing.T) {
	for name, store := range map[string]Store{"memory": NewMemoryStore(), "sql": newSQLStore(t)} {
		t.Run(name, func(t *testing.T) {
			eventBus := bus.NewMemoryEventBus(logger.NewNop())
			t.Cleanup(eventBus.Close)

			sink := NewSink(store, eventBus, logger.NewNop())
			require.NoError(t, sink.Start())
			t.Cleanup(func() { _ = sink.Stop() })

			rec := NewRecorder(eventBus)
			a := New(ListCreate, "u1", "b1", map[string]any{"list_title": "Todo"}).WithList("l1")
			require.NoError(t, rec.Log(context.Background(), a))
			eventBus.Wait()

			got, err := store.ListByBoard(context.Background(), "b1", ListOptions{})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, a.ID, got[0].ID)
			assert.Equal(t, ListCreate, got[0].Type)
			assert.Equal(t, "l1", got[0].ListID)
			assert.Equal(t, "Todo", got[0].Payload["list_title"])
		})
	}
}

func TestFromEvent_SurvivesJSONRoundTrip(t *testing.T) {
	a := New(CardMove, "u1", "b1", map[string]any{"from": 1, "to": 3}).WithCard("c1")

	raw, err := json.Marshal(a.ToEvent())
	require.NoError(t, err)
	var decoded bus.Event
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := FromEvent(&decoded)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "c1", got.CardID)
	assert.Equal(t, float64(3), got.Payload["to"])
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
}

func TestFromEvent_Rejects(t *testing.T) {
	_, err := FromEvent(bus.NewEvent("other", "x", nil))
	assert.Error(t, err)

	_, err = FromEvent(bus.NewEvent("activity.recorded", "x", map[string]interface{}{"type": "LIST_CREATE"}))
	assert.Error(t, err)
}

func TestSQLStore_DuplicateAppendIgnored(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	a := New(BoardCreate, "u1", "b1", nil)
	require.NoError(t, store.Append(ctx, a))
	require.NoError(t, store.Append(ctx, a))

	got, err := store.ListByBoard(ctx, "b1", ListOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStores_NewestFirstAndPaging(t *testing.T) {
	for name, store := range map[string]Store{"memory": NewMemoryStore(), "sql": newSQLStore(t)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			var ids []string
			for i := 0; i < 5; i++ {
				a := New(CardCreate, "u1", "b1", nil)
				a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
				ids = append(ids, a.ID)
				require.NoError(t, store.Append(ctx, a))
			}
			require.NoError(t, store.Append(ctx, New(CardCreate, "u1", "other", nil)))

			page, err := store.ListByBoard(ctx, "b1", ListOptions{Limit: 2})
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, ids[4], page[0].ID)
			assert.Equal(t, ids[3], page[1].ID)

			older, err := store.ListByBoard(ctx, "b1", ListOptions{Limit: 10, Before: page[1].CreatedAt})
			require.NoError(t, err)
			require.Len(t, older, 3)
			assert.Equal(t, ids[2], older[0].ID)
		})
	}
}

func TestListOptions_Normalize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ListOptions{}.Normalize().Limit)
	assert.Equal(t, MaxPageSize, ListOptions{Limit: 10000}.Normalize().Limit)
	assert.Equal(t, 7, ListOptions{Limit: 7}.Normalize().Limit)
}

func TestSQLStore_CorruptPayloadIsReported(t *testing.T) {
	store, pool := newSQLStoreWithPool(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, New(BoardCreate, "u1", "b1", map[string]any{"board_name": "Roadmap"})))
	_, err := pool.Writer().Exec(`UPDATE activities SET payload = '{"board_name":' WHERE board_id = 'b1'`)
	require.NoError(t, err)

	_, err = store.ListByBoard(ctx, "b1", ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode payload")
}

func TestStores_ListByActor(t *testing.T) {
	for name, store := range map[string]Store{"memory": NewMemoryStore(), "sql": newSQLStore(t)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
			first := New(BoardCreate, "u1", "b1", nil)
			first.CreatedAt = base
			second := New(CardCreate, "u1", "b2", nil)
			second.CreatedAt = base.Add(time.Minute)
			for _, a := range []*Activity{first, second, New(CardCreate, "u2", "b1", nil)} {
				require.NoError(t, store.Append(ctx, a))
			}

			got, err := store.ListByActor(ctx, "u1", ListOptions{})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, second.ID, got[0].ID)
			assert.Equal(t, first.ID, got[1].ID)
		})
	}
}
