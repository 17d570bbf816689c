package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosVisitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frame_sampler_videos_visited_total",
		Help: "Total number of candidate videos visited, by outcome",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "frame_sampler_stage_duration_seconds",
		Help:    "Duration of per-video pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frame_sampler_frames_uploaded_total",
		Help: "Total number of frame images uploaded across all videos",
	})

	ActiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frame_sampler_active_runs",
		Help: "Number of sampling runs currently in flight",
	})
)
