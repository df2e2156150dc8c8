// Command server runs a concord node: the registry sync engine and the
// regional proposal federation engine behind one HTTP surface. main only
// assembles dependencies; behavior lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"concord/internal/audit"
	"concord/internal/clientinfo"
	httpapi "concord/internal/http"
	"concord/internal/platform/config"
	"concord/internal/platform/httpserver"
	"concord/internal/platform/kafka"
	"concord/internal/platform/logger"
	platformmetrics "concord/internal/platform/metrics"
	"concord/internal/platform/postgres"
	"concord/internal/platform/redis"
	"concord/internal/proposal/crossdeck"
	"concord/internal/proposal/federation"
	proposalhandler "concord/internal/proposal/handler"
	proposalindex "concord/internal/proposal/index"
	proposalmetrics "concord/internal/proposal/metrics"
	proposalservice "concord/internal/proposal/service"
	proposalstore "concord/internal/proposal/store"
	"concord/internal/registry/consensus"
	"concord/internal/registry/fetcher"
	registryhandler "concord/internal/registry/handler"
	registrymetrics "concord/internal/registry/metrics"
	"concord/internal/registry/proof"
	registryservice "concord/internal/registry/service"
	registrystore "concord/internal/registry/store"
	id "concord/pkg/domain"
	"concord/pkg/platform/circuit"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second

	// auditInboxSize bounds the audit pipeline backlog. Overflow drops
	// events rather than blocking request paths.
	auditInboxSize = 256

	// resultHistoryCapacity bounds the in-memory sync result history when
	// no Postgres DSN is configured.
	resultHistoryCapacity = 500
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.LogFormat, cfg.Server.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	// Backing services. All optional: without them the node runs on
	// in-memory stores and the in-process audit sink.
	db, err := postgres.Open(startCtx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	pool, err := postgres.OpenPool(startCtx, cfg.Postgres)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := redis.New(startCtx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	kafkaClient, err := kafka.New(startCtx, cfg.Kafka)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
	}

	if err := applySchemas(startCtx, db, pool); err != nil {
		return err
	}

	// Audit pipeline: request paths enqueue, the worker drains into Kafka
	// when configured, otherwise into the event store.
	var auditStore audit.Store
	if db != nil {
		auditStore = audit.NewPostgresStore(db)
	} else {
		auditStore = audit.NewInMemoryStore()
	}

	var sink audit.Publisher = audit.NewPublisher(auditStore)
	if kafkaClient != nil {
		kafkaSink, err := audit.NewKafkaPublisher(startCtx, kafkaClient, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		sink = kafkaSink
	}

	inbox := make(chan audit.Event, auditInboxSize)
	publisher := audit.NewAsyncPublisher(inbox)
	worker := audit.NewWorker(sink, inbox, log)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("audit worker stopped", "error", err)
		}
	}()

	// Registry sync engine.
	regMetrics := registrymetrics.New()

	var source fetcher.Fetcher
	if cfg.Sync.SourceURL != "" {
		source = fetcher.NewHTTP(cfg.Sync.SourceURL, nil)
	} else {
		source = fetcher.NewStatic()
		log.Warn("no registry source configured, serving seeded snapshots only")
	}
	if redisClient != nil {
		source = fetcher.NewCached(source, redisClient.Client, cfg.Sync.CacheTTL, log)
	}

	validator := proof.New(proof.NewDigestStrategy(cfg.Sync.CheckLatency),
		proof.WithLogger(log),
		proof.WithMetrics(regMetrics),
	)

	var results registrystore.ResultStore
	if db != nil {
		results = registrystore.NewPostgres(db)
	} else {
		results = registrystore.NewInMemory(resultHistoryCapacity)
	}

	engine := registryservice.New(source, validator, consensus.NewThresholdEvaluator(cfg.Sync.ConsensusThreshold),
		registryservice.WithLogger(log),
		registryservice.WithMetrics(regMetrics),
		registryservice.WithAuditPublisher(publisher),
		registryservice.WithResultStore(results),
		registryservice.WithWorkers(cfg.Sync.Workers),
	)

	// Proposal federation engine.
	propMetrics := proposalmetrics.New()
	idx := proposalindex.New()
	deck := crossdeck.NewAggregator()

	var repo proposalstore.Repository
	if pool != nil {
		repo = proposalstore.NewPostgres(pool)
	} else {
		repo = proposalstore.NewInMemory()
	}

	svc := proposalservice.New(idx, deck,
		proposalservice.WithLogger(log),
		proposalservice.WithMetrics(propMetrics),
		proposalservice.WithAuditPublisher(publisher),
		proposalservice.WithRepository(repo),
		proposalservice.WithClientInfo(clientinfo.NewService(cfg.ClientFingerprints)),
	)
	if err := svc.Restore(startCtx); err != nil {
		return fmt.Errorf("restore proposal index: %w", err)
	}

	authenticator := federation.NewAuthenticator(cfg.Federation.JWTSigningKey, cfg.Federation.NodeID,
		federation.WithTokenTTL(cfg.Federation.JWTTTL))

	endpoints := make(map[id.NodeID]string, len(cfg.Federation.Nodes))
	for nodeID, baseURL := range cfg.Federation.Nodes {
		endpoints[id.NodeID(nodeID)] = baseURL
	}

	coordinator := federation.NewCoordinator(idx, federation.NewHTTPTransport(endpoints, authenticator),
		federation.WithLogger(log),
		federation.WithMetrics(propMetrics),
		federation.WithAuditPublisher(publisher),
		federation.WithStatusStore(repo),
		federation.WithPushTimeout(cfg.Federation.PushTimeout),
		federation.WithWorkers(cfg.Sync.Workers),
		federation.WithBreakerOptions(
			circuit.WithFailureThreshold(cfg.Federation.BreakerFailures),
			circuit.WithSuccessThreshold(cfg.Federation.BreakerSuccesses),
		),
	)

	router := httpapi.New(httpapi.Deps{
		Logger:         log,
		Registry:       registryhandler.New(engine, results, log),
		Proposals:      proposalhandler.New(svc, coordinator, log),
		PeerVerifier:   authenticator,
		AdminToken:     cfg.Server.AdminToken,
		Metrics:        platformmetrics.NewHTTP(),
		Checks:         healthChecks(db, redisClient, kafkaClient),
		ClientMetadata: cfg.ClientFingerprints,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("concord node listening",
			"addr", cfg.Server.Addr,
			"node_id", cfg.Federation.NodeID,
			"federation_peers", len(cfg.Federation.Nodes),
			"postgres", db != nil,
			"redis", redisClient != nil,
			"kafka", kafkaClient != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// applySchemas runs the CREATE IF NOT EXISTS DDL for every configured store.
func applySchemas(ctx context.Context, db *sql.DB, pool *pgxpool.Pool) error {
	if db != nil {
		if _, err := db.ExecContext(ctx, registrystore.Schema); err != nil {
			return fmt.Errorf("apply registry schema: %w", err)
		}
		if _, err := db.ExecContext(ctx, audit.Schema); err != nil {
			return fmt.Errorf("apply audit schema: %w", err)
		}
	}
	if pool != nil {
		if _, err := pool.Exec(ctx, proposalstore.Schema); err != nil {
			return fmt.Errorf("apply proposal schema: %w", err)
		}
	}
	return nil
}

func healthChecks(db *sql.DB, redisClient *redis.Client, kafkaClient *kafka.Client) []httpapi.HealthCheck {
	var checks []httpapi.HealthCheck
	if db != nil {
		checks = append(checks, httpapi.HealthCheck{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: redisClient.Health})
	}
	if kafkaClient != nil {
		checks = append(checks, httpapi.HealthCheck{Name: "kafka", Check: kafkaClient.Health})
	}
	return checks
}
