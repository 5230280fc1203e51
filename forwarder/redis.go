package forwarder

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jd3nn1s/dash/telemetry"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultRedisKey      = "dash"
	DefaultRedisInterval = 500 * time.Millisecond
)

type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
	Key      string `toml:"key" yaml:"key"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// RedisForwarder mirrors the latest snapshot into a redis hash and
// publishes the hash key on every update.
type RedisForwarder struct {
	Config RedisConfig

	client   *redis.Client
	interval time.Duration
	publish  func(ctx context.Context, fields map[string]interface{}) error
	fwdChan  chan telemetry.Snapshot
}

func NewRedisForwarder(config RedisConfig) *RedisForwarder {
	if config.Key == "" {
		config.Key = DefaultRedisKey
	}
	r := &RedisForwarder{
		Config: config,
		client: redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		}),
		interval: DefaultRedisInterval,
		fwdChan:  make(chan telemetry.Snapshot, 1),
	}
	r.publish = r.pipeline
	return r
}

func (r *RedisForwarder) Name() string {
	return "redis"
}

func (r *RedisForwarder) Close() error {
	return r.client.Close()
}

func (r *RedisForwarder) Forward(snap *telemetry.Snapshot) error {
	select {
	case r.fwdChan <- *snap:
	default:
	}
	return nil
}

func (r *RedisForwarder) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case snap := <-r.fwdChan:
			if err := r.publish(ctx, Fields(&snap)); err != nil {
				log.WithField("err", err).Error("unable to forward telemetry to redis")
			}
		default:
		}
	}
}

func (r *RedisForwarder) pipeline(ctx context.Context, fields map[string]interface{}) error {
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, r.Config.Key, fields)
	pipe.Publish(ctx, r.Config.Key, "telemetry")
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "unable to update %s", r.Config.Key)
	}
	return nil
}

// Fields is the hash written for snap. Unavailable channels are empty
// strings.
func Fields(snap *telemetry.Snapshot) map[string]interface{} {
	fields := make(map[string]interface{}, int(telemetry.ChannelCount)+2)
	for ch := telemetry.Channel(0); ch < telemetry.ChannelCount; ch++ {
		v := snap.Raw(ch)
		if !telemetry.IsAvailable(v) {
			fields[ch.String()] = ""
			continue
		}
		fields[ch.String()] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	fields["gear:target"] = snap.Registers.TargetGear
	fields["lock"] = snap.Registers.Lock.String()
	return fields
}
