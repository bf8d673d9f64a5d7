// Package ratelimit implements a fixed-window request counter in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrExpireScript increments the window counter, starts the window on the
// first hit and returns {count, pttl}.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

var errUnexpectedReply = errors.New("ratelimit: unexpected script reply")

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

type Limiter struct {
	rdb    redis.Scripter
	max    int
	window time.Duration
	prefix string
}

// New returns a Limiter allowing max hits per key in each window.
func New(rdb redis.Scripter, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, max: max, window: window, prefix: "rl:"}
}

// Allow records one hit for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := incrExpireScript.Run(ctx, l.rdb, []string{l.prefix + key}, l.window.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, errUnexpectedReply
	}
	count, ok1 := res[0].(int64)
	pttl, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return Decision{}, errUnexpectedReply
	}

	d := Decision{
		Allowed:   int(count) <= l.max,
		Limit:     l.max,
		Remaining: l.max - int(count),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if pttl > 0 {
		d.Reset = time.Duration(pttl) * time.Millisecond
	}
	return d, nil
}
