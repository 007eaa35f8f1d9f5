package utils

import (
	"context"
	"log"
)

// Go runs fn on its own goroutine, recovering panics so a background task
// can never take the process down. The context is accepted for signature
// symmetry with blocking helpers; fn is responsible for honoring it.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered panic in background task: %v", r)
			}
		}()
		fn()
	}()
}
