// Command whisperengine is the composition root for one bot process: it
// loads configuration, connects every external dependency, wires the
// hot path, the daily-life loop, the gossip bus and the background
// workers, and runs them all under internal/runtime.Kernel until
// SIGINT/SIGTERM. Adapted from the teacher's cmd/ai-bridge/main.go,
// which hands everything off to mxmain.BridgeMain — here there is no
// bridge framework to delegate to, so the wiring that framework would
// have done lives here instead.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/whisperengine/core/internal/config"
	"github.com/whisperengine/core/internal/dispatch"
	"github.com/whisperengine/core/internal/runtime"
	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/adapters/devadapter"
	"github.com/whisperengine/core/pkg/adapters/openaiadapter"
	"github.com/whisperengine/core/pkg/artifacts"
	"github.com/whisperengine/core/pkg/dailylife"
	"github.com/whisperengine/core/pkg/memory/embedding"
	"github.com/whisperengine/core/pkg/memory/retrieval"
	"github.com/whisperengine/core/pkg/memory/selfmemory"
	"github.com/whisperengine/core/pkg/memory/vectorstore"
	"github.com/whisperengine/core/pkg/moderation"
	"github.com/whisperengine/core/pkg/respond"
	"github.com/whisperengine/core/pkg/session"
	"github.com/whisperengine/core/pkg/taskqueue"
	"github.com/whisperengine/core/pkg/trust"
	"github.com/whisperengine/core/pkg/universe"
	"github.com/whisperengine/core/pkg/workers"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the bot's YAML configuration")
	devMode := flag.Bool("dev", false, "use the in-memory LLM adapter instead of the configured provider (messaging is always the in-memory adapter)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("bot", cfg.BotName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := wire(ctx, cfg, logger, *devMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("wiring failed")
	}

	// w.Inbound is the one entry point a concrete gateway adapter (Discord,
	// Slack, Matrix — none shipped here, same external-collaborator boundary
	// as pkg/respond.Persona's character-definition loading) calls per
	// received message; this process only runs the background subsystems
	// that don't depend on one.
	logger.Info().Msg("whisperengine starting")
	if err := w.kernel.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("whisperengine stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("whisperengine stopped")
}

// wired is everything the composition root builds: the runtime context,
// the kernel of background FeatureModules, and the inbound dispatcher a
// gateway adapter plugs into.
type wired struct {
	kernel  *runtime.Kernel
	Inbound *dispatch.Dispatcher
}

// wire constructs every dependency, the respond/dailylife/workers
// subsystems, and registers them on a Kernel. Split out of main so the
// dependency graph is testable in isolation from flag parsing and signal
// handling.
func wire(ctx context.Context, cfg config.Config, logger zerolog.Logger, devMode bool) (*wired, error) {
	vectorClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Vector.Host,
		Port: cfg.Vector.Port,
	})
	if err != nil {
		return nil, err
	}

	pgPool, err := pgxpool.New(ctx, cfg.SQL.URL)
	if err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(cfg.Broker.URL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(redisOpts)

	embedder, err := embedding.NewHTTPProvider(cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.ModelName, nil)
	if err != nil {
		return nil, err
	}

	store := vectorstore.New(vectorClient, embedder, cfg.BotName, logger)
	self := selfmemory.New(store, cfg.BotName)
	pipeline := &retrieval.Pipeline{Recaller: store, Defining: store}

	trustMgr := trust.NewManager(trust.NewStore(pgPool))
	queue := taskqueue.NewQueue(rdb, cfg.RedisKeyPrefix, logger)
	artifactsReg := artifacts.New(rdb, cfg.RedisKeyPrefix, logger)
	modChecker := moderation.New(rdb, cfg.RedisKeyPrefix, logger)
	sessions := session.New(cfg.BotName, queue)

	// No concrete gateway adapter ships in this module (§6's "Messaging
	// adapter contract" only specifies the interface a real Discord/Slack/
	// Matrix integration would implement); devadapter stands in as the
	// seam until one is plugged in, in dev mode and in production alike.
	messaging := devadapter.New(logger)

	var llm adapters.LLM
	if devMode {
		llm = devadapter.NewLLM("(dev mode: no LLM configured)")
	} else {
		llm = openaiadapter.New(cfg.LLM.Key, "", cfg.LLM.Model)
	}

	privacy := respond.PrivacyConfig{
		BlockedUserIDs:   toSet(cfg.BlockedUserIDs),
		EnableDMBlock:    cfg.Autonomy.EnableDMBlock,
		DMAllowedUserIDs: toSet(cfg.DMAllowedUserIDs),
	}

	optOut := &dispatch.TrustOptOutChecker{Trust: trustMgr, BotName: cfg.BotName}
	bus := universe.NewBus(cfg.Autonomy.EnableUniverseEvents, queue, optOut)

	engine := &respond.Engine{
		Persona: respond.Persona{
			BotName:      cfg.BotName,
			SystemPrompt: "You are " + cfg.BotName + ", a warm and attentive conversational companion.",
			ColdResponses: []string{
				"Let's take a short pause and talk again soon.",
			},
			ErrorMessages: []string{
				"Something went wrong on my end, try again in a moment.",
			},
		},
		Messaging:  messaging,
		LLM:        llm,
		Memory:     store,
		Self:       self,
		Pipeline:   pipeline,
		Trust:      trustMgr,
		Sessions:   sessions,
		Universe:   bus,
		Artifacts:  artifactsReg,
		Privacy:    privacy,
		Moderation: modChecker,
		Log:        logger.With().Str("component", "respond").Logger(),
	}

	activity := dailylife.NewActivityMonitor()
	scheduler := dailylife.NewScheduler(cfg.BotName, queue, messaging, activity, dailylife.SchedulerConfig{
		Watchlist: cfg.WatchChannelIDs,
	}, logger)
	poller := dailylife.NewPoller(cfg.BotName, rdb, cfg.RedisKeyPrefix, messaging, store, trustMgr, queue, logger)
	reactor := dailylife.NewReactor(defaultReactionRate, dailylife.ReactionCaps{}, messaging)

	inbound := &dispatch.Dispatcher{
		BotName:   cfg.BotName,
		Engine:    engine,
		Reactor:   reactor,
		Scheduler: scheduler,
		Activity:  activity,
		Trust:     trustMgr,
		Log:       logger.With().Str("component", "dispatch").Logger(),
	}

	wk := &workers.Workers{
		BotName:   cfg.BotName,
		Queue:     queue,
		Memory:    store,
		Trust:     trustMgr,
		Self:      self,
		LLM:       llm,
		Embedder:  embedder,
		Messaging: messaging,
		Character: dailylife.Character{BotName: cfg.BotName},
		Flags: dailylife.Flags{
			EnableReplies:   cfg.Autonomy.EnableAutonomousReplies,
			EnableReactions: cfg.Autonomy.EnableAutonomousReactions,
			EnablePosting:   cfg.Autonomy.EnableAutonomousPosting,
			PostCooldown:    time.Duration(cfg.AutonomousPostCooldownMinutes) * time.Minute,
		},
		Activity:  activity,
		Poller:    poller,
		Graph:     engine,
		Creative:  engine,
		Directory: dispatch.SingleBotDirectory{},
		Log:       logger.With().Str("component", "workers").Logger(),
	}
	taskWorker := taskqueue.NewWorker(queue, []taskqueue.QueueName{
		taskqueue.QueueCognition, taskqueue.QueueSensory, taskqueue.QueueAction, taskqueue.QueueSocial,
	}, logger)
	wk.Register(taskWorker)

	rt := runtime.Context{
		Identity:  runtime.Identity{BotName: cfg.BotName},
		Vector:    vectorClient,
		Pg:        pgPool,
		Redis:     rdb,
		Memory:    store,
		Embedder:  embedder,
		Queue:     queue,
		Artifacts: artifactsReg,
		Messaging: messaging,
		LLM:       llm,
		Log:       logger,
	}

	kernel := runtime.NewKernel(rt)
	kernel.AddModule(schedulerModule{scheduler: scheduler})
	kernel.AddModule(pollerModule{poller: poller})
	kernel.AddModule(workerModule{worker: taskWorker})

	return &wired{kernel: kernel, Inbound: inbound}, nil
}

// defaultReactionRate is the per-message roll chance for the ambient
// emoji reactor (§4.5); no configuration key overrides it.
const defaultReactionRate = 0.05

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// schedulerModule adapts dailylife.Scheduler.Run to runtime.FeatureModule.
type schedulerModule struct {
	scheduler *dailylife.Scheduler
}

func (schedulerModule) Name() string { return "dailylife.scheduler" }

func (m schedulerModule) Start(ctx context.Context, rt runtime.Context) error {
	return m.scheduler.Run(ctx)
}

// pollerModule adapts dailylife.Poller.Run to runtime.FeatureModule.
type pollerModule struct {
	poller *dailylife.Poller
}

func (pollerModule) Name() string { return "dailylife.poller" }

func (m pollerModule) Start(ctx context.Context, rt runtime.Context) error {
	return m.poller.Run(ctx)
}

// workerModule adapts taskqueue.Worker.Run (which has no error return) to
// runtime.FeatureModule.
type workerModule struct {
	worker *taskqueue.Worker
}

const workerPollInterval = 500 * time.Millisecond

func (workerModule) Name() string { return "taskqueue.worker" }

func (m workerModule) Start(ctx context.Context, rt runtime.Context) error {
	m.worker.Run(ctx, workerPollInterval)
	return nil
}
