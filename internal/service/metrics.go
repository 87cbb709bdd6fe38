package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors updated by ingestion and deletion.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ingestions    *prometheus.CounterVec
	ingestedBytes prometheus.Counter
	ownerDeletes  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ingestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileapi_ingestions_total",
				Help: "File ingestions by outcome.",
			},
			[]string{"result"},
		),
		ingestedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileapi_ingested_bytes_total",
			Help: "Bytes written by successful ingestions.",
		}),
		ownerDeletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileapi_owner_deletes_total",
				Help: "Owner deletions by mode and outcome.",
			},
			[]string{"mode", "result"},
		),
	}
	for _, c := range []prometheus.Collector{m.ingestions, m.ingestedBytes, m.ownerDeletes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeIngestion(size int64, err error) {
	if m == nil {
		return
	}
	m.ingestions.WithLabelValues(ingestionResult(err)).Inc()
	if err == nil || errors.Is(err, ErrCleanupFailed) {
		m.ingestedBytes.Add(float64(size))
	}
}

func (m *Metrics) observeOwnerDelete(mode DeleteMode, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ownerDeletes.WithLabelValues(mode.String(), result).Inc()
}

func ingestionResult(err error) string {
	switch {
	case err == nil:
		return "stored"
	case errors.Is(err, ErrCleanupFailed):
		return "stored_cleanup_failed"
	case errors.Is(err, ErrStoreVetoed):
		return "vetoed"
	case errors.Is(err, ErrSourceNotFound), errors.Is(err, ErrSourceUnreadable), errors.Is(err, ErrSourceTooLarge):
		return "bad_source"
	case errors.Is(err, ErrOwnerNotPersisted):
		return "owner_missing"
	case errors.Is(err, ErrUniquenessViolation):
		return "conflict"
	default:
		return "failed"
	}
}
