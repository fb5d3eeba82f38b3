package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/heartsquest"
	"github.com/aretw0/heartsquest/pkg/adapters/file"
	"github.com/aretw0/heartsquest/pkg/adapters/redis"
	"github.com/aretw0/heartsquest/pkg/persistence/middleware"
	"github.com/aretw0/heartsquest/pkg/ports"
)

// NewStore opens the session store selected by opts: Redis when an address
// is given, else the file store. The returned func releases it.
func NewStore(opts Options) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	var mws []middleware.Middleware
	if opts.RedactAnswers {
		mws = append(mws, middleware.NewRedactMiddleware())
	}
	if opts.EncryptionKey != "" {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: middleware.KeyFromPassphrase(opts.EncryptionKey),
		})
		if err != nil {
			return nil, nil, nil, err
		}
		mws = append(mws, enc)
	}

	if opts.RedisAddr == "" {
		return middleware.Chain(file.New(opts.SessionsDir), mws...), nil, func() error { return nil }, nil
	}

	var storeOpts []redis.Option
	if opts.RedisTTL > 0 {
		storeOpts = append(storeOpts, redis.WithTTL(opts.RedisTTL))
	}
	store := redis.New(opts.RedisAddr, storeOpts...)
	locker := redis.NewLocker(store.Client(), store.Prefix())
	return middleware.Chain(store, mws...), locker, store.Client().Close, nil
}

// NewEngine initializes an engine with the standard CLI conventions.
// Extra options are applied last.
func NewEngine(opts Options, logger *slog.Logger, extra ...heartsquest.Option) (*heartsquest.Engine, func() error, error) {
	store, locker, closeStore, err := NewStore(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}

	engineOpts := []heartsquest.Option{
		heartsquest.WithLogger(logger),
		heartsquest.WithStore(store),
	}
	if locker != nil {
		engineOpts = append(engineOpts, heartsquest.WithLocker(locker))
	}
	switch {
	case opts.Content != "":
		engineOpts = append(engineOpts, heartsquest.WithContentFile(opts.Content))
	case opts.Variant != "":
		engineOpts = append(engineOpts, heartsquest.WithVariant(opts.Variant))
	}
	if opts.Seeded {
		engineOpts = append(engineOpts, heartsquest.WithSeed(opts.Seed))
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		engineOpts = append(engineOpts, heartsquest.WithLifecycleHooks(createDebugHooks(logger)))
	}

	engine, err := heartsquest.New(append(engineOpts, extra...)...)
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closeStore, nil
}
