package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry 同步任务是短进程，指标在结束时推送到 Pushgateway
var Registry = prometheus.NewRegistry()

var (
	FilesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sync_files_total",
			Help: "Input files processed, by outcome",
		},
		[]string{"outcome"},
	)

	RecordsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sync_records_inserted_total",
			Help: "Quiz records accepted by the store, by variant",
		},
		[]string{"variant"},
	)

	ChunkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_sync_chunk_duration_seconds",
			Help:    "Duration of processing and flushing one chunk",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	ChunksInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_sync_chunks_in_flight",
			Help: "Chunks currently executing",
		},
	)

	DuplicatesDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_dedupe_deleted_total",
			Help: "Duplicate records deleted, by variant",
		},
		[]string{"variant"},
	)
)

func init() {
	Registry.MustRegister(FilesProcessed)
	Registry.MustRegister(RecordsInserted)
	Registry.MustRegister(ChunkDuration)
	Registry.MustRegister(ChunksInFlight)
	Registry.MustRegister(DuplicatesDeleted)
}

// Push 推送当前指标，url 为空时不做任何事
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(Registry).Push()
}
