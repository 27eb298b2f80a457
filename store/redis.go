package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCollection is a Collection backed by one redis hash. Field names are
// the record ids, values are the JSON-encoded fields.
type RedisCollection struct {
	rdb *redis.Client
	key string
}

var _ Collection = (*RedisCollection)(nil)

// NewRedisCollection connects to redis and binds the collection to the
// hash key "mcp:<name>".
func NewRedisCollection(url, name string) (*RedisCollection, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCollection{rdb: rdb, key: "mcp:" + name}, nil
}

func (c *RedisCollection) List(ctx context.Context) ([]Record, error) {
	raw, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.key, err)
	}

	out := make([]Record, 0, len(raw))
	for field, value := range raw {
		r, err := decodeRecord(field, value)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *RedisCollection) Get(ctx context.Context, id int) (Record, error) {
	value, err := c.rdb.HGet(ctx, c.key, strconv.Itoa(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s/%d: %w", c.key, id, err)
	}
	return decodeRecord(strconv.Itoa(id), value)
}

func (c *RedisCollection) Create(ctx context.Context, fields map[string]any) (Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("marshal fields: %w", err)
	}

	// HSetNX loop: compute max+1, claim the field, retry if another
	// writer got there first.
	for {
		ids, err := c.rdb.HKeys(ctx, c.key).Result()
		if err != nil {
			return Record{}, fmt.Errorf("create in %s: %w", c.key, err)
		}

		id := 1
		for _, s := range ids {
			if n, err := strconv.Atoi(s); err == nil && n >= id {
				id = n + 1
			}
		}

		claimed, err := c.rdb.HSetNX(ctx, c.key, strconv.Itoa(id), data).Result()
		if err != nil {
			return Record{}, fmt.Errorf("create in %s: %w", c.key, err)
		}
		if claimed {
			return Record{ID: id, Fields: cloneFields(fields)}, nil
		}
	}
}

func (c *RedisCollection) Update(ctx context.Context, id int, fields map[string]any) (Record, error) {
	exists, err := c.rdb.HExists(ctx, c.key, strconv.Itoa(id)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("update %s/%d: %w", c.key, id, err)
	}
	if !exists {
		return Record{}, ErrNotFound
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("marshal fields: %w", err)
	}
	if err := c.rdb.HSet(ctx, c.key, strconv.Itoa(id), data).Err(); err != nil {
		return Record{}, fmt.Errorf("update %s/%d: %w", c.key, id, err)
	}
	return Record{ID: id, Fields: cloneFields(fields)}, nil
}

func (c *RedisCollection) Delete(ctx context.Context, id int) error {
	removed, err := c.rdb.HDel(ctx, c.key, strconv.Itoa(id)).Result()
	if err != nil {
		return fmt.Errorf("delete %s/%d: %w", c.key, id, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *RedisCollection) Close() error {
	return c.rdb.Close()
}

func decodeRecord(field, value string) (Record, error) {
	id, err := strconv.Atoi(field)
	if err != nil {
		return Record{}, fmt.Errorf("store: non-numeric record id %q", field)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return Record{}, fmt.Errorf("parse stored fields: %w", err)
	}
	return Record{ID: id, Fields: fields}, nil
}
