// Package repository defines the observation store interface and errors.
package repository

import "github.com/okian/vigil/internal/domain/history"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithMaxAlerts sets the number of alerts retained before the oldest is
// evicted.
func WithMaxAlerts(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.alerts = history.New[Alert](n)
		}
	}
}
