// Package redis implements the storage port on a redis server.
//
// Every mutation runs as an optimistic WATCH/MULTI/EXEC transaction and is
// retried when a concurrent writer touched a watched key first.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultMaxRetries bounds optimistic transaction attempts.
const DefaultMaxRetries = 16

// ErrTooMuchContention is returned when a transaction lost every retry.
var ErrTooMuchContention = errors.New("redis transaction retries exhausted")

// Options configure the redis backend.
type Options struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	MaxRetries int
}

// Connection holds the redis client and the key namespace.
type Connection struct {
	*redis.Client
	keys       keys
	maxRetries int
}

// NewConnection connects and pings the server.
func NewConnection(ctx context.Context, opts Options) (*Connection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newConnection(client, opts), nil
}

func newConnection(client *redis.Client, opts Options) *Connection {
	retries := opts.MaxRetries
	if retries < 1 {
		retries = DefaultMaxRetries
	}
	return &Connection{
		Client:     client,
		keys:       keys{prefix: opts.KeyPrefix},
		maxRetries: retries,
	}
}

func (c *Connection) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// transact runs fn under WATCH on keys until it commits or retries run out.
func (c *Connection) transact(ctx context.Context, fn func(tx *redis.Tx) error, watched ...string) error {
	for i := 0; i < c.maxRetries; i++ {
		err := c.Watch(ctx, fn, watched...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooMuchContention
}

type keys struct {
	prefix string
}

func (k keys) user(id string) string           { return k.prefix + "user:" + id }
func (k keys) username(username string) string { return k.prefix + "user:username:" + username }
func (k keys) email(email string) string       { return k.prefix + "user:email:" + email }
func (k keys) users() string                   { return k.prefix + "users" }
func (k keys) score(id string) string          { return k.prefix + "score:" + id }
func (k keys) userScores(id string) string     { return k.prefix + "user:" + id + ":scores" }
func (k keys) anonymousScores() string         { return k.prefix + "scores:anonymous" }
func (k keys) scoreSeq() string                { return k.prefix + "scores:seq" }
func (k keys) refresh(jti string) string       { return k.prefix + "refresh:" + jti }
func (k keys) userRefresh(id string) string    { return k.prefix + "user:" + id + ":refresh" }

// getter is satisfied by both the client and a watched transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}
