package port

import (
	"restaurant-menu/internal/core/domain"
	"time"
)

// Metrics is an interface to record core metrics
type Metrics interface {
	ObserveUpload(provider domain.Provider, duration time.Duration, err error)
	IncMergeFailure(kind domain.EntityKind)
	IncCodeConflict(prefix string)
}
