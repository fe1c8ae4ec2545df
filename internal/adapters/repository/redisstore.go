package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/langvote/internal/domain/model"
)

const redisMaxRetries = 16

// Key layout, all under the configured prefix:
//
//	{prefix}:submission:{id}   hash of one submission
//	{prefix}:email:{emailKey}  id owning an email
//	{prefix}:order             list of ids in insertion order
//	{prefix}:languages         hash of language -> count
type redisKeys struct {
	prefix string
}

func (k redisKeys) submission(id string) string { return k.prefix + ":submission:" + id }
func (k redisKeys) email(email string) string {
	return k.prefix + ":email:" + model.EmailKey(email)
}
func (k redisKeys) order() string     { return k.prefix + ":order" }
func (k redisKeys) languages() string { return k.prefix + ":languages" }

// redisRecord is the hash form of a submission.
type redisRecord struct {
	ID            string `redis:"id"`
	Name          string `redis:"name"`
	Email         string `redis:"email"`
	Language      string `redis:"language"`
	Reason        string `redis:"reason"`
	TimeSubmitted string `redis:"time_submitted"`
}

func toRedisRecord(s model.Submission) redisRecord {
	return redisRecord(s)
}

func (r redisRecord) submission() model.Submission {
	return model.Submission(r)
}

// RedisStore keeps submissions in Redis.
type RedisStore struct {
	settings

	rdb  *redis.Client
	keys redisKeys
}

var _ Store = (*RedisStore)(nil)

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, opt *redis.Options, prefix string, opts ...Option) (*RedisStore, error) {
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return NewRedisStore(rdb, prefix, opts...), nil
}

// NewRedisStore wraps a client. The store owns rdb and closes it on Close.
func NewRedisStore(rdb *redis.Client, prefix string, opts ...Option) *RedisStore {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = "langvote"
	}
	return &RedisStore{
		settings: newSettings(opts),
		rdb:      rdb,
		keys:     redisKeys{prefix: prefix},
	}
}

// AddOrUpdate implements Store.
func (s *RedisStore) AddOrUpdate(ctx context.Context, in model.SubmissionInput) (sub model.Submission, updated bool, err error) {
	defer observe(OpAddOrUpdate, time.Now(), &err)

	sub, updated, err = s.save(ctx, newRecord(in, s.clock()))
	if err != nil {
		return model.Submission{}, false, err
	}
	return sub, updated, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, sub model.Submission) (err error) {
	defer observe(OpPut, time.Now(), &err)
	if sub.ID == "" {
		return ErrMissingID
	}
	_, _, err = s.save(ctx, sub)
	return err
}

// save runs the upsert as an optimistic transaction watching the email
// and order keys. An empty sub.ID keeps the existing id or assigns a new one.
func (s *RedisStore) save(ctx context.Context, sub model.Submission) (model.Submission, bool, error) {
	emailKey := s.keys.email(sub.Email)
	orderKey := s.keys.order()
	fixedID := sub.ID

	var updated bool
	txf := func(tx *redis.Tx) error {
		existing, err := tx.Get(ctx, emailKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		updated = existing != ""

		var oldLanguage string
		var orderIdx int64 = -1
		if updated {
			if oldLanguage, err = tx.HGet(ctx, s.keys.submission(existing), "language").Result(); err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if fixedID != "" && fixedID != existing {
				if orderIdx, err = tx.LPos(ctx, orderKey, existing, redis.LPosArgs{}).Result(); err != nil {
					return fmt.Errorf("locate %s in order list: %w", existing, err)
				}
			}
		}

		sub.ID = fixedID
		switch {
		case sub.ID != "":
		case updated:
			sub.ID = existing
		default:
			sub.ID = s.newID()
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.keys.submission(sub.ID), toRedisRecord(sub))
			pipe.Set(ctx, emailKey, sub.ID, 0)
			switch {
			case !updated:
				pipe.RPush(ctx, orderKey, sub.ID)
			case existing != sub.ID:
				pipe.LSet(ctx, orderKey, orderIdx, sub.ID)
				pipe.Del(ctx, s.keys.submission(existing))
			}
			if oldLanguage != sub.Language {
				if updated && oldLanguage != "" {
					pipe.HIncrBy(ctx, s.keys.languages(), oldLanguage, -1)
				}
				pipe.HIncrBy(ctx, s.keys.languages(), sub.Language, 1)
			}
			return nil
		})
		return err
	}

	for range redisMaxRetries {
		err := s.rdb.Watch(ctx, txf, emailKey, orderKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return model.Submission{}, false, fmt.Errorf("save submission: %w", err)
		}
		return sub, updated, nil
	}
	return model.Submission{}, false, ErrConflict
}

// All implements Store.
func (s *RedisStore) All(ctx context.Context) (subs []model.Submission, err error) {
	defer observe(OpAll, time.Now(), &err)

	ids, err := s.rdb.LRange(ctx, s.keys.order(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read order list: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if len(ids) > 0 {
		_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range ids {
				cmds[i] = pipe.HGetAll(ctx, s.keys.submission(id))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read submissions: %w", err)
		}
	}

	subs = make([]model.Submission, 0, len(ids))
	for _, cmd := range cmds {
		var rec redisRecord
		if err := cmd.Scan(&rec); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		if rec.ID == "" {
			continue
		}
		subs = append(subs, rec.submission())
	}
	return subs, nil
}

// Count implements Store.
func (s *RedisStore) Count(ctx context.Context) (n int, err error) {
	defer observe(OpCount, time.Now(), &err)

	size, err := s.rdb.LLen(ctx, s.keys.order()).Result()
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return int(size), nil
}

// CountsByLanguage implements Store.
func (s *RedisStore) CountsByLanguage(ctx context.Context) (counts map[string]int, err error) {
	defer observe(OpCountsByLanguage, time.Now(), &err)

	raw, err := s.rdb.HGetAll(ctx, s.keys.languages()).Result()
	if err != nil {
		return nil, fmt.Errorf("count languages: %w", err)
	}

	counts = make(map[string]int, len(raw))
	for lang, v := range raw {
		var n int
		if _, err := fmt.Sscan(v, &n); err != nil {
			return nil, fmt.Errorf("parse count for %q: %w", lang, err)
		}
		if n > 0 {
			counts[lang] = n
		}
	}
	return counts, nil
}

// FindByEmail implements Store.
func (s *RedisStore) FindByEmail(ctx context.Context, email string) (sub model.Submission, err error) {
	defer observe(OpFindByEmail, time.Now(), &err)

	id, err := s.rdb.Get(ctx, s.keys.email(email)).Result()
	if errors.Is(err, redis.Nil) {
		return model.Submission{}, ErrNotFound
	}
	if err != nil {
		return model.Submission{}, fmt.Errorf("lookup email: %w", err)
	}

	var rec redisRecord
	if err := s.rdb.HGetAll(ctx, s.keys.submission(id)).Scan(&rec); err != nil {
		return model.Submission{}, fmt.Errorf("decode submission: %w", err)
	}
	if rec.ID == "" {
		return model.Submission{}, ErrNotFound
	}
	return rec.submission(), nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
