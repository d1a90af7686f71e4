package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

// readers lets only the listed users read a board.
type readers map[string]bool

func (r readers) RequireBoardRead(ctx context.Context, boardID, userID string) error {
	if !r[userID] {
		return apperrors.PermissionDenied("no permission to view board")
	}
	return nil
}

type testEnv struct {
	router *gin.Engine
	store  *activity.MemoryStore
	bus    *bus.MemoryEventBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	env := &testEnv{
		router: gin.New(),
		store:  activity.NewMemoryStore(),
		bus:    bus.NewMemoryEventBus(log),
	}
	t.Cleanup(env.bus.Close)

	auth := httpmw.NewAuthenticator("", true, log)
	RegisterActivityRoutes(env.router.Group("/api/v1", auth.Middleware()), readers{"owner": true}, env.store, env.bus, log)
	return env
}

func get(env *testEnv, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(httpmw.UserIDHeader, userID)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestListActivities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		a := activity.New(activity.CardCreate, "owner", "b1", nil)
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, env.store.Append(ctx, a))
	}
	require.NoError(t, env.store.Append(ctx, activity.New(activity.CardCreate, "owner", "b2", nil)))

	w := get(env, "/api/v1/boards/b1/activities?limit=2", "owner")
	require.Equal(t, http.StatusOK, w.Code)
	var page listActivitiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Activities, 2)
	assert.True(t, page.Activities[0].CreatedAt.After(page.Activities[1].CreatedAt))
	require.NotNil(t, page.NextBefore)

	w = get(env, "/api/v1/boards/b1/activities?before="+page.NextBefore.Format(time.RFC3339Nano), "owner")
	require.Equal(t, http.StatusOK, w.Code)
	page = listActivitiesResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Activities, 1)
	assert.Nil(t, page.NextBefore)

	assert.Equal(t, http.StatusBadRequest, get(env, "/api/v1/boards/b1/activities?limit=zero", "owner").Code)
	assert.Equal(t, http.StatusBadRequest, get(env, "/api/v1/boards/b1/activities?before=yesterday", "owner").Code)
	assert.Equal(t, http.StatusForbidden, get(env, "/api/v1/boards/b1/activities", "stranger").Code)
}

func TestActivityStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/boards/b1/activities/stream"

	_, resp, err := gorillaws.DefaultDialer.Dial(url, http.Header{httpmw.UserIDHeader: {"stranger"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := gorillaws.DefaultDialer.Dial(url, http.Header{httpmw.UserIDHeader: {"owner"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	recorder := activity.NewRecorder(env.bus)
	ctx := context.Background()
	require.NoError(t, recorder.Log(ctx, activity.New(activity.ListCreate, "owner", "b2", nil)))
	sent := activity.New(activity.ListCreate, "owner", "b1", map[string]any{"list_title": "Todo"})
	require.NoError(t, recorder.Log(ctx, sent))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got activity.Activity
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, activity.ListCreate, got.Type)
	assert.Equal(t, "Todo", got.Payload["list_title"])
}
