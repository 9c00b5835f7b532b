package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"teamaccess/internal/domain/team"
)

var errStaleGeneration = errors.New("roster cache: generation changed")

type snapshot struct {
	Team    team.Team     `json:"team"`
	Members []team.Member `json:"members"`
}

// RosterCache stores loaded team snapshots in Redis. Redis failures degrade to
// cache misses and are only logged.
type RosterCache struct {
	client  *redis.Client
	log     *zap.Logger
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

func NewRosterCache(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RosterCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRosterCacheWithClient(client, ttl, log), nil
}

func NewRosterCacheWithClient(client *redis.Client, ttl time.Duration, log *zap.Logger) *RosterCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RosterCache{
		client:  client,
		log:     log,
		prefix:  "teamaccess:roster:",
		ttl:     ttl,
		timeout: 250 * time.Millisecond,
	}
}

func (c *RosterCache) key(teamID int64) string {
	return c.prefix + strconv.FormatInt(teamID, 10)
}

func (c *RosterCache) genKey(teamID int64) string {
	return c.key(teamID) + ":gen"
}

func (c *RosterCache) Get(ctx context.Context, teamID int64) (team.Team, []team.Member, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(teamID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logError("get", teamID, err)
		}
		return team.Team{}, nil, false
	}

	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		c.logError("decode", teamID, err)
		return team.Team{}, nil, false
	}
	return s.Team, s.Members, true
}

// Generation reads the team's invalidation counter. A missing counter is
// generation 0. ok is false when Redis cannot be read; callers then skip Set.
func (c *RosterCache) Generation(ctx context.Context, teamID int64) (uint64, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gen, err := c.client.Get(ctx, c.genKey(teamID)).Uint64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		c.logError("gen", teamID, err)
		return 0, false
	}
	return gen, true
}

// Set stores the snapshot under WATCH on the generation key, so the write is
// dropped if Invalidate ran since gen was read.
func (c *RosterCache) Set(ctx context.Context, teamID int64, gen uint64, t team.Team, members []team.Member) {
	raw, err := json.Marshal(snapshot{Team: t, Members: members})
	if err != nil {
		c.logError("encode", teamID, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	genKey := c.genKey(teamID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key(teamID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("roster cache fill skipped, team invalidated meanwhile", zap.Int64("team_id", teamID))
	default:
		c.logError("set", teamID, err)
	}
}

// Invalidate bumps the generation and drops the snapshot in one transaction.
func (c *RosterCache) Invalidate(ctx context.Context, teamID int64) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, c.genKey(teamID))
		p.Del(ctx, c.key(teamID))
		return nil
	})
	if err != nil {
		c.logError("invalidate", teamID, err)
	}
}

func (c *RosterCache) Close() error {
	return c.client.Close()
}

func (c *RosterCache) logError(op string, teamID int64, err error) {
	c.log.Warn("roster cache error", zap.String("op", op), zap.Int64("team_id", teamID), zap.Error(err))
}
