package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"ballotbox/internal/audit"
	"ballotbox/internal/ballot"
	ballotstore "ballotbox/internal/ballot/store"
	"ballotbox/internal/election"
	electionstore "ballotbox/internal/election/store"
	"ballotbox/internal/identity"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/httpserver"
	"ballotbox/internal/platform/logger"
	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/platform/redis"
	"ballotbox/internal/results"
	httptransport "ballotbox/internal/transport/http"
	"ballotbox/internal/voter"
	voterstore "ballotbox/internal/voter/store"
	"ballotbox/migrations"
)

// main wires dependencies and keeps the process lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	health := make(map[string]httptransport.HealthChecker)

	// Without a DSN everything runs on the in-memory stores. That mode exists
	// for local development; production always sets the DSN.
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("postgres ping failed", "error", err.Error())
			os.Exit(1)
		}
		if err := migrations.Apply(context.Background(), db); err != nil {
			log.Error("schema migration failed", "error", err.Error())
			os.Exit(1)
		}
		health["postgres"] = db.PingContext
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		health["redis"] = redisClient.Health
	}

	var (
		voters     voter.Store
		elections  electionstore.Store
		votes      ballotstore.VoteStore
		history    ballotstore.HistoryStore
		auditStore audit.Store
		storeTx    ballot.StoreTx
	)
	if db != nil {
		voters = voterstore.NewPostgres(db)
		elections = electionstore.NewPostgres(db)
		votes = ballotstore.NewPostgresVotes(db)
		history = ballotstore.NewPostgresHistory(db)
		auditStore = audit.NewPostgresStore(db)
		storeTx = newBallotPostgresTx(db, cfg.CastTimeout)
	} else {
		voters = voterstore.NewMemory()
		elections = electionstore.NewMemory()
		votes = ballotstore.NewMemoryVotes()
		history = ballotstore.NewMemoryHistory()
		auditStore = audit.NewMemoryStore()
		storeTx = ballot.NewInMemoryStoreTx()
	}

	inbox := make(chan audit.Event, cfg.AuditBuffer)
	publisher := audit.NewPublisher(inbox, m.AuditEventsDropped.Inc)
	worker := audit.NewWorker(auditStore, inbox)

	var resultsCache results.Cache
	if redisClient != nil {
		resultsCache = results.NewRedisCache(redisClient.Client, cfg.ResultsCacheTTL)
	}

	ledger := ballot.NewLedger(voters, elections, votes, history, auditStore, storeTx, m, log)
	electionSvc := election.NewService(elections, publisher, log)
	voterSvc := voter.NewService(voters, publisher, log)
	resultsSvc := results.NewService(elections, resultsCache, m, log)

	verifier := identity.NewJWTVerifier(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	handler := httptransport.NewHandler(ledger, electionSvc, voterSvc, resultsSvc, verifier, log, health)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("ballotbox listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
