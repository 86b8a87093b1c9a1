package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamsync/sync-worker/internal/application"
	"github.com/streamsync/sync-worker/internal/config"
	"github.com/streamsync/sync-worker/internal/infrastructure/postgres"
	"github.com/streamsync/sync-worker/internal/infrastructure/redis"
	"github.com/streamsync/sync-worker/internal/infrastructure/spotify"
	"github.com/streamsync/sync-worker/internal/infrastructure/youtube"
)

func main() {
	log.Println("starting sync worker...")

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(cfg.Redis)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		log.Fatal("failed to connect to redis: ", err)
	}
	log.Println("connected to redis")

	pgClient, err := postgres.NewClient(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("failed to connect to postgres: ", err)
	}
	defer pgClient.Close()
	log.Println("connected to postgres")

	if err := postgres.RunMigrations(ctx, pgClient); err != nil {
		log.Fatal("failed to run migrations: ", err)
	}
	log.Println("migrations completed")

	queue := redis.NewJobQueue(redisClient)
	credentials := redis.NewCredentialStore(redisClient)
	statusStore := redis.NewStatusStore(redisClient)
	matchCache := postgres.NewMatchRepository(pgClient)

	spotifyClient := spotify.NewClient(cfg.Spotify)
	youtubeClient := youtube.NewClient(cfg.YouTube)

	resolver := application.NewResolver(youtubeClient, matchCache, application.AcceptFirst(), cfg.Worker.Concurrency)
	syncer := application.NewSyncer(spotifyClient, youtubeClient, resolver, credentials, statusStore)
	worker := application.NewWorker(queue, syncer, cfg.Worker)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("metrics listening on %s", cfg.Worker.MetricsAddr)
		if err := http.ListenAndServe(cfg.Worker.MetricsAddr, nil); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("received shutdown signal")
		cancel()
	}()

	worker.Run(ctx)

	log.Println("worker stopped")
}
