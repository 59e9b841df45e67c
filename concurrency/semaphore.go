// concurrency/semaphore.go
// Package concurrency bounds the number of HTTP exchanges in flight with a semaphore.
package concurrency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcquireConcurrencyToken blocks until a permit is free, the acquire timeout passes or ctx is done.
//
// On success it returns a derived context carrying the request ID under RequestIDKey.
// The caller must hand the same ID to ReleaseConcurrencyToken.
//
// Example:
//
//	ctx, requestID, err := handler.AcquireConcurrencyToken(ctx)
//	if err != nil {
//	    return err
//	}
//	defer handler.ReleaseConcurrencyToken(requestID)
func (ch *ConcurrencyHandler) AcquireConcurrencyToken(ctx context.Context) (context.Context, uuid.UUID, error) {
	start := time.Now()
	requestID := uuid.New()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, ch.acquireTimeout)
	defer cancel()

	select {
	case ch.sem <- struct{}{}:
		waited := time.Since(start)
		ch.Metrics.Lock.Lock()
		ch.Metrics.PermitWaitTime += waited
		ch.Metrics.TotalRequests++
		ch.Metrics.Lock.Unlock()

		utilizedTokens := len(ch.sem)
		ch.logger.Debug("Acquired concurrency token",
			zap.String("RequestID", requestID.String()),
			zap.Duration("AcquisitionTime", waited),
			zap.Int("UtilizedTokens", utilizedTokens),
			zap.Int("AvailableTokens", cap(ch.sem)-utilizedTokens),
		)
		return context.WithValue(ctx, RequestIDKey{}, requestID), requestID, nil

	case <-ctxWithTimeout.Done():
		ch.Metrics.Lock.Lock()
		ch.Metrics.TotalTimeouts++
		ch.Metrics.Lock.Unlock()
		ch.logger.Warn("Failed to acquire concurrency token",
			zap.String("RequestID", requestID.String()),
			zap.Error(ctxWithTimeout.Err()),
		)
		return ctx, requestID, ctxWithTimeout.Err()
	}
}

// ReleaseConcurrencyToken returns a permit to the pool.
func (ch *ConcurrencyHandler) ReleaseConcurrencyToken(requestID uuid.UUID) {
	<-ch.sem

	ch.lock.Lock()
	defer ch.lock.Unlock()

	utilizedTokens := len(ch.sem)
	ch.logger.Debug("Released concurrency token",
		zap.String("RequestID", requestID.String()),
		zap.Int("UtilizedTokens", utilizedTokens),
		zap.Int("AvailableTokens", cap(ch.sem)-utilizedTokens),
	)
}

// RequestIDFromContext returns the request ID stored by AcquireConcurrencyToken.
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey{}).(uuid.UUID)
	return id, ok
}
