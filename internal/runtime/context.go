// Package runtime holds the single explicit, non-global struct threaded
// through every constructor in the process: the vector client, pgx pool,
// redis client, adapters and structured logger. Adapted from the
// teacher's modules/runtime.Kernel — here there is no Matrix bridge
// profile to carry, so Context replaces BridgeProfile with bot identity.
package runtime

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/artifacts"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/embedding"
	"github.com/whisperengine/core/pkg/taskqueue"
)

// Identity is the bot this Context is scoped to — every memory, trust and
// queue operation threaded through this Context stays within one bot's
// namespace (physical collection isolation, §4.1).
type Identity struct {
	BotName     string
	DisplayName string
}

// Context is the explicit runtime dependency bag: everything a
// constructor needs, passed by value (it holds pointers/interfaces, so
// copying it is cheap and safe), never reached for via a package-level
// global.
type Context struct {
	Identity Identity

	Vector *qdrant.Client
	Pg     *pgxpool.Pool
	Redis  *redis.Client

	Memory    memory.Store
	Embedder  *embedding.Provider
	Queue     *taskqueue.Queue
	Artifacts *artifacts.Registry

	Messaging adapters.Messaging
	LLM       adapters.LLM

	Log zerolog.Logger
}

// WithComponent returns a copy of ctx whose logger carries an extra
// "component" field, the way the teacher's sub-loggers are derived per
// subsystem rather than reconfigured globally.
func (c Context) WithComponent(name string) Context {
	c.Log = c.Log.With().Str("component", name).Logger()
	return c
}

// FeatureModule is a subsystem that registers itself against a running
// Context — the scheduler, the gossip bus, the action poller — mirroring
// the teacher's FeatureModule/Kernel registration pattern.
type FeatureModule interface {
	Name() string
	Start(ctx context.Context, rt Context) error
}

// Kernel runs a fixed set of FeatureModules against one Context and
// drains them cleanly on cancellation, the way the teacher's Kernel
// collects registered modules before the bridge starts.
type Kernel struct {
	rt      Context
	modules []FeatureModule
}

// NewKernel builds a Kernel bound to one runtime Context.
func NewKernel(rt Context) *Kernel {
	return &Kernel{rt: rt}
}

// AddModule registers a module to be started by Run.
func (k *Kernel) AddModule(m FeatureModule) {
	if m == nil {
		return
	}
	k.modules = append(k.modules, m)
}

// Run starts every registered module as its own goroutine under ctx and
// blocks until all of them return, matching the teacher's
// start-then-graceful-drain idiom: cancel ctx, then wait for every
// in-flight pass to finish.
func (k *Kernel) Run(ctx context.Context) error {
	errs := make(chan error, len(k.modules))
	for _, m := range k.modules {
		m := m
		go func() {
			log := k.rt.Log.With().Str("module", m.Name()).Logger()
			log.Info().Msg("module starting")
			err := m.Start(ctx, k.rt)
			log.Info().Err(err).Msg("module stopped")
			errs <- err
		}()
	}

	var firstErr error
	for range k.modules {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
