package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ttlLive     = 24 * time.Hour
	resultsKeep = 100
)

type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// OpenRedis connects to REDIS_URL (redis:// or rediss://) and pings it.
func OpenRedis(ctx context.Context, raw string) (*RedisStore, error) {
	opts, err := parseRedisURL(raw)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *RedisStore) keyLive(room string) string { return "session:live:" + strings.TrimSpace(room) }
func (s *RedisStore) keyLast() string            { return "session:last" }
func (s *RedisStore) keyResults() string         { return "session:results" }

func (s *RedisStore) SaveLive(ctx context.Context, l Live) error {
	if strings.TrimSpace(l.RoomID) == "" {
		return nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyLive(l.RoomID), raw, ttlLive)
	pipe.Set(ctx, s.keyLast(), l.RoomID, ttlLive)
	_, err = pipe.Exec(ctx)
	return err
}

// LoadLive returns nil, nil when the room has no record.
func (s *RedisStore) LoadLive(ctx context.Context, room string) (*Live, error) {
	raw, err := s.rdb.Get(ctx, s.keyLive(room)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var l Live
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// LastLive returns the most recently saved live record, if it is still present.
func (s *RedisStore) LastLive(ctx context.Context) (*Live, error) {
	room, err := s.rdb.Get(ctx, s.keyLast()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.LoadLive(ctx, room)
}

// SaveResult prepends r to the bounded results list and drops the live record.
func (s *RedisStore) SaveResult(ctx context.Context, r Result) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.keyResults(), raw)
	pipe.LTrim(ctx, s.keyResults(), 0, resultsKeep-1)
	if strings.TrimSpace(r.RoomID) != "" {
		pipe.Del(ctx, s.keyLive(r.RoomID))
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		return err
	}
	// only forget "last" if it still points at this room
	if last, err := s.rdb.Get(ctx, s.keyLast()).Result(); err == nil && last == r.RoomID {
		_ = s.rdb.Del(ctx, s.keyLast()).Err()
	}
	return nil
}

// Results returns up to n most recent results, newest first.
func (s *RedisStore) Results(ctx context.Context, n int) ([]Result, error) {
	if n <= 0 {
		return nil, nil
	}
	raws, err := s.rdb.LRange(ctx, s.keyResults(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(raws))
	for _, raw := range raws {
		var r Result
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
