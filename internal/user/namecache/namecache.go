// Package namecache resolves the display names written into activity payloads.
// Lookups go through redis when a client is configured.
package namecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/user"
)

// Fallback names used when a lookup misses.
const (
	UnknownFirstName  = "Unknown"
	UnknownLastName   = "User"
	UnknownBoardTitle = "Unknown board"
)

// UserName is a cached user display name.
type UserName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserGetter loads users.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// BoardGetter loads boards.
type BoardGetter interface {
	GetBoard(ctx context.Context, id string) (*models.Board, error)
}

// Lookup resolves user and board display names.
type Lookup struct {
	users  UserGetter
	boards BoardGetter
	client *redis.Client // nil disables caching
	ttl    time.Duration
	logger *logger.Logger
}

// New creates a lookup. client may be nil.
func New(users UserGetter, boards BoardGetter, client *redis.Client, ttl time.Duration, log *logger.Logger) *Lookup {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Lookup{
		users:  users,
		boards: boards,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(zap.String("component", "name-cache")),
	}
}

// NewRedisClient parses redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func userKey(id string) string  { return "names:user:" + id }
func boardKey(id string) string { return "names:board:" + id }

// UserName returns the user's first and last name, or the fallback pair.
func (l *Lookup) UserName(ctx context.Context, userID string) UserName {
	var cached UserName
	if l.getCached(ctx, userKey(userID), &cached) {
		return cached
	}

	u, err := l.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			l.logger.Warn("user name lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return UserName{FirstName: UnknownFirstName, LastName: UnknownLastName}
	}

	name := UserName{FirstName: u.FirstName, LastName: u.LastName}
	l.setCached(ctx, userKey(userID), name)
	return name
}

// BoardTitle returns the board's title, or the fallback title.
func (l *Lookup) BoardTitle(ctx context.Context, boardID string) string {
	var cached string
	if l.getCached(ctx, boardKey(boardID), &cached) {
		return cached
	}

	board, err := l.boards.GetBoard(ctx, boardID)
	if err != nil {
		return UnknownBoardTitle
	}
	l.setCached(ctx, boardKey(boardID), board.Title)
	return board.Title
}

// ForgetBoard drops a cached board title after a rename or delete.
func (l *Lookup) ForgetBoard(ctx context.Context, boardID string) {
	if l.client == nil {
		return
	}
	if err := l.client.Del(ctx, boardKey(boardID)).Err(); err != nil {
		l.logger.Warn("failed to evict board title", zap.String("board_id", boardID), zap.Error(err))
	}
}

func (l *Lookup) getCached(ctx context.Context, key string, dst interface{}) bool {
	if l.client == nil {
		return false
	}
	raw, err := l.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		l.logger.Warn("name cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false
	}
	return true
}

func (l *Lookup) setCached(ctx context.Context, key string, value interface{}) {
	if l.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := l.client.Set(ctx, key, data, l.ttl).Err(); err != nil {
		l.logger.Warn("name cache write failed", zap.String("key", key), zap.Error(err))
	}
}
