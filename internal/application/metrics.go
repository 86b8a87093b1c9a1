package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/streamsync/sync-worker/internal/domain"
)

var (
	syncJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamsync_jobs_total",
		Help: "Sync jobs processed, partitioned by terminal result.",
	}, []string{"result"})

	syncTracksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamsync_tracks_total",
		Help: "Source tracks processed across all sync runs, by outcome.",
	}, []string{"outcome"})

	queuePollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamsync_queue_poll_errors_total",
		Help: "Errors while polling the job queue.",
	})
)

func recordReport(report *domain.SyncReport) {
	result := "failed"
	if report.Succeeded {
		result = "completed"
	}
	syncJobsTotal.WithLabelValues(result).Inc()
	syncTracksTotal.WithLabelValues("matched").Add(float64(report.MatchedTracks))
	syncTracksTotal.WithLabelValues("failed").Add(float64(report.FailedTracks))
}
