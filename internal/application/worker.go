package application

import (
	"context"
	"log"
	"time"

	"github.com/streamsync/sync-worker/internal/config"
	"github.com/streamsync/sync-worker/internal/infrastructure/redis"
)

type Worker interface {
	Run(ctx context.Context)
}

type worker struct {
	queue  redis.JobQueue
	syncer Syncer
	config config.WorkerConfig
}

func NewWorker(queue redis.JobQueue, syncer Syncer, cfg config.WorkerConfig) Worker {
	return &worker{
		queue:  queue,
		syncer: syncer,
		config: cfg,
	}
}

func (w *worker) Run(ctx context.Context) {
	log.Printf("worker started, polling every %v", w.config.PollInterval)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("worker shutting down...")
			return
		case <-ticker.C:
			w.processNextJob(ctx)
		}
	}
}

func (w *worker) processNextJob(ctx context.Context) {
	job, err := w.queue.Pop(ctx, w.config.PollInterval)
	if err != nil {
		queuePollErrors.Inc()
		log.Printf("error polling queue: %v", err)
		return
	}

	if job == nil {
		return
	}

	log.Printf("received job %s: playlist %s for session %s", job.JobID, job.SourcePlaylistID, job.SessionID)

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	report := w.syncer.Sync(jobCtx, job)
	recordReport(report)

	if report.Succeeded {
		log.Printf("job %s done: %s", job.JobID, report.Message)
	} else {
		log.Printf("job %s failed: %s", job.JobID, report.Message)
	}
}
