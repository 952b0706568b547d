// Package job defines the asynchronous tasks that advance an order's
// lifecycle and the listeners that chain them off domain events. Tasks carry
// only identifiers; current state is re-read from the store at execution time
// so a cancelled order is never silently advanced.
package job

import (
	"time"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/config"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/service"

	"github.com/rs/zerolog"
)

// Policy holds the dispatch delays and retry backoff schedules for the three
// task types. Production values come from config; tests shrink them.
type Policy struct {
	ProcessDelay    time.Duration
	CompleteDelay   time.Duration
	ProcessBackoff  []time.Duration
	CompleteBackoff []time.Duration
	StockBackoff    []time.Duration
}

// PolicyFromConfig maps queue configuration onto a task policy.
func PolicyFromConfig(cfg config.QueueConfig) Policy {
	return Policy{
		ProcessDelay:    cfg.ProcessDelay,
		CompleteDelay:   cfg.CompleteDelay,
		ProcessBackoff:  cfg.ProcessBackoff,
		CompleteBackoff: cfg.CompleteBackoff,
		StockBackoff:    cfg.StockBackoff,
	}
}

// Deps bundles what every task needs.
type Deps struct {
	Orders   service.OrderService
	Products service.ProductService
	Policy   Policy
	Logger   zerolog.Logger
}

const taskMaxAttempts = 3
