package utils

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DoWithRetry runs fn up to maxRetries times, waiting interval between
// attempts, honoring ctx cancellation.
func DoWithRetry(ctx context.Context, maxRetries int, interval time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		log.Printf("[RETRY] attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
	return err
}

// DoWithBackoff retries fn with linearly growing delay (base*attempt).
// Used for optimistic-write conflicts where contention clears quickly.
func DoWithBackoff(ctx context.Context, maxRetries int, base time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(base * time.Duration(attempt)):
		}
	}
	return err
}
