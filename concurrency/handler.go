// concurrency/handler.go
package concurrency

import (
	"sync"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/logger"
)

// DefaultAcquireTimeout bounds how long a request waits for a permit.
const DefaultAcquireTimeout = 10 * time.Second

// ConcurrencyHandler controls the number of concurrent HTTP exchanges.
type ConcurrencyHandler struct {
	sem            chan struct{}
	logger         logger.Logger
	acquireTimeout time.Duration
	lock           sync.Mutex
	Metrics        *ConcurrencyMetrics
}

// ConcurrencyMetrics captures permit usage for the client's interactions with the API.
type ConcurrencyMetrics struct {
	TotalRequests  int64         // Permits handed out
	TotalTimeouts  int64         // Acquisitions abandoned on timeout or cancellation
	PermitWaitTime time.Duration // Total time spent waiting for permits
	Lock           sync.Mutex
}

// NewConcurrencyHandler initializes a ConcurrencyHandler allowing at most limit
// exchanges in flight. A non-positive acquireTimeout selects DefaultAcquireTimeout.
func NewConcurrencyHandler(limit int, acquireTimeout time.Duration, log logger.Logger) *ConcurrencyHandler {
	if limit < 1 {
		limit = 1
	}
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ConcurrencyHandler{
		sem:            make(chan struct{}, limit),
		logger:         log,
		acquireTimeout: acquireTimeout,
		Metrics:        &ConcurrencyMetrics{},
	}
}

// Limit returns the permit capacity.
func (ch *ConcurrencyHandler) Limit() int {
	return cap(ch.sem)
}

// InFlight returns the number of permits currently held.
func (ch *ConcurrencyHandler) InFlight() int {
	return len(ch.sem)
}

// RequestIDKey is the context key under which the request ID of an acquired permit is stored.
type RequestIDKey struct{}
