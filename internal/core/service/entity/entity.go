package entity

import (
	"log/slog"
	"restaurant-menu/internal/core/port"
	"time"
)

const (
	defaultCreateAttempts = 3
	defaultRetryInterval  = 50 * time.Millisecond
)

type entityService struct {
	repo      port.EntityRepository
	router    port.UploadRouter
	allocator port.CodeAllocator
	publisher port.EventPublisher
	metrics   port.Metrics
	logger    *slog.Logger

	now            func() time.Time
	createAttempts uint64
	retryInterval  time.Duration
}

// Option configures the entity service
type Option func(*entityService)

// WithPublisher publishes an event after every persisted change
func WithPublisher(publisher port.EventPublisher) Option {
	return func(s *entityService) { s.publisher = publisher }
}

// WithMetrics records merge failures and code conflicts
func WithMetrics(metrics port.Metrics) Option {
	return func(s *entityService) { s.metrics = metrics }
}

// WithClock replaces the wall clock used for audit stamps
func WithClock(now func() time.Time) Option {
	return func(s *entityService) { s.now = now }
}

// WithCreateRetry bounds the attempts made when a freshly allocated code is
// already taken
func WithCreateRetry(attempts uint64, interval time.Duration) Option {
	return func(s *entityService) {
		if attempts > 0 {
			s.createAttempts = attempts
		}
		if interval > 0 {
			s.retryInterval = interval
		}
	}
}

// NewEntityService creates a new entity service
func NewEntityService(repo port.EntityRepository, router port.UploadRouter, allocator port.CodeAllocator, logger *slog.Logger, opts ...Option) port.EntityService {
	s := &entityService{
		repo:           repo,
		router:         router,
		allocator:      allocator,
		logger:         logger,
		now:            time.Now,
		createAttempts: defaultCreateAttempts,
		retryInterval:  defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stamp returns the current time in timezone, or in the local zone when the
// timezone is empty or unknown
func (s *entityService) stamp(timezone string) time.Time {
	now := s.now()
	if timezone == "" {
		return now
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		s.logger.Warn("ignoring unknown timezone", "timezone", timezone, "error", err)
		return now
	}
	return now.In(loc)
}
