package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ExportsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exports_started_total",
		Help: "Количество запущенных генераций отчётов",
	})
	ExportsSucceeded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exports_succeeded_total",
		Help: "Количество успешно сгенерированных отчётов",
	})
	ExportsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_failed_total",
		Help: "Ошибки генерации отчётов по категориям",
	}, []string{"kind"})
	ReportBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_build_seconds",
		Help:    "Время полного цикла генерации отчёта",
		Buckets: prometheus.DefBuckets,
	})
	FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "source_fetch_duration_seconds",
		Help:    "Длительность выгрузки постов из источника",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"mode", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ExportsStarted,
		ExportsSucceeded,
		ExportsFailed,
		ReportBuildSeconds,
		FetchDuration,
	)
}

// ObserveFetch записывает длительность и статус выгрузки постов.
func ObserveFetch(mode string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FetchDuration.WithLabelValues(mode, status).Observe(time.Since(start).Seconds())
}
