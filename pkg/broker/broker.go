package broker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"railway/pkg/envelope"

	"github.com/redis/go-redis/v9"
)

// Broker fans envelopes out across server instances over Redis pub/sub.
type Broker struct {
	rdb      *redis.Client
	ctx      context.Context
	cancel   context.CancelFunc
	handlers sync.Map
}

func New(redisURL string) (*Broker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithCancel(context.Background())

	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Broker{rdb: rdb, ctx: ctx, cancel: cancel}, nil
}

func (b *Broker) Publish(channel string, env envelope.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return b.rdb.Publish(b.ctx, channel, data).Err()
}

// Subscribe starts one goroutine that dispatches incoming envelopes to the
// handler registered for their action.
func (b *Broker) Subscribe(channels ...string) {
	sub := b.rdb.Subscribe(b.ctx, channels...)
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-b.ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				env, err := envelope.Unmarshal([]byte(msg.Payload))
				if err != nil {
					log.Printf("[BROKER] dropping malformed message on %s: %v", msg.Channel, err)
					continue
				}
				b.dispatch(env)
			}
		}
	}()
}

func (b *Broker) dispatch(env envelope.Envelope) {
	if fn, ok := b.handlers.Load(env.Action); ok {
		go fn.(func(envelope.Envelope))(env)
	}
}

func (b *Broker) On(action string, fn func(envelope.Envelope)) {
	b.handlers.Store(action, fn)
}

func (b *Broker) Broadcast(channel string, action, service string, data interface{}) error {
	env, err := envelope.NewEvent(action, service, data)
	if err != nil {
		return err
	}
	return b.Publish(channel, env)
}

func (b *Broker) Close() {
	b.cancel()
	b.rdb.Close()
}
