package monitor

import "context"

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
