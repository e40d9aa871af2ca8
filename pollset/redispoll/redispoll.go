// Package redispoll lets a PollSet's Wait also wake on a control signal
// broadcast by another process, via Redis Pub/Sub — the distributed
// analogue of pollset.PollSet.WriteControl/ReadControl for a scheduler
// whose peers run on other nodes. Grounded on registry/result_stream.go's
// use of *redis.Client for cross-node coordination (there: tool-use-id to
// stream-id mappings with a TTL; here: a pub/sub wakeup channel), using
// github.com/redis/go-redis/v9 per SPEC_FULL.md §9.
package redispoll

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flowgraph/core/pollset"
)

// Control is a Redis-backed wakeup channel: any process calling Signal
// wakes every process Watching the same key, the cross-node equivalent
// of one PollSet's WriteControl waking its own local Wait.
type Control struct {
	rdb     *redis.Client
	channel string
}

// New returns a Control that publishes/subscribes on the Redis Pub/Sub
// channel derived from key.
func New(rdb *redis.Client, key string) *Control {
	return &Control{rdb: rdb, channel: redisChannel(key)}
}

func redisChannel(key string) string {
	return fmt.Sprintf("flowgraph:pollset:%s", key)
}

// Signal broadcasts one wakeup to every process currently Watching this
// Control's channel.
func (c *Control) Signal(ctx context.Context) error {
	return c.rdb.Publish(ctx, c.channel, "1").Err()
}

// Watch subscribes to this Control's channel and returns a Condition
// channel suitable for pollset.PollSet.AddFd, plus a cancel function that
// unsubscribes and closes the returned channel. Each published Signal is
// delivered as one Readable notification; a slow consumer that hasn't
// drained the previous notification simply misses redundant wakeups,
// since PollSet only needs "something changed", not a delivery count.
func (c *Control) Watch(ctx context.Context) (<-chan pollset.Condition, func(), error) {
	sub := c.rdb.Subscribe(ctx, c.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("redispoll: subscribe %s: %w", c.channel, err)
	}

	ready := make(chan pollset.Condition, 1)
	done := make(chan struct{})
	go func() {
		msgs := sub.Channel()
		for {
			select {
			case _, ok := <-msgs:
				if !ok {
					close(ready)
					return
				}
				select {
				case ready <- pollset.Readable:
				default:
				}
			case <-done:
				close(ready)
				return
			}
		}
	}()

	cancel := func() {
		close(done)
		sub.Close()
	}
	return ready, cancel, nil
}
