package api

import "context"

// Pinger checks database connectivity.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// ClientCounter reports connected live feed clients.
type ClientCounter interface {
	ClientCount() int
}
