package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SegmentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senseact",
		Name:      "segments_processed_total",
		Help:      "Total number of video segments processed",
	}, []string{"device_id"})

	FramesSampled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senseact",
		Name:      "frames_sampled_total",
		Help:      "Total number of frames sampled from video segments",
	}, []string{"device_id"})

	KeyframesSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senseact",
		Name:      "keyframes_selected_total",
		Help:      "Total number of keyframes promoted for analysis",
	}, []string{"device_id"})

	AnalysisFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senseact",
		Name:      "analysis_failures_total",
		Help:      "Total number of dropped frames due to analyzer failures",
	}, []string{"device_id"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "senseact",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of vision-language analyzer calls",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	SummariesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senseact",
		Name:      "summaries_created_total",
		Help:      "Total number of event windows closed and summarized",
	}, []string{"device_id"})

	SummaryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senseact",
		Name:      "summary_failures_total",
		Help:      "Total number of failed summarization attempts",
	}, []string{"device_id"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "senseact",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket observers",
	})
)
