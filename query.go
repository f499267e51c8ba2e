package logflow

import (
	"time"

	"github.com/mdzesseis/logflow/internal/transport"
)

// Order selects ascending or descending timestamp order for Query
// results.
type Order int

const (
	// Ascending returns the oldest matching record first.
	Ascending Order = iota
	// Descending returns the newest matching record first.
	Descending
)

// LogQuery describes a request against a Logger's buffered and
// per-transport history: an optional time window, an optional level
// allowlist, pagination (Start/Limit), ordering, and optional field
// projection.
type LogQuery struct {
	From, Until time.Time
	Levels      []string
	Start       int
	Limit       int
	Order       Order
	Fields      []string
}

func (q LogQuery) toTransportQuery() transport.Query {
	return transport.Query{
		From:       q.From,
		Until:      q.Until,
		Levels:     q.Levels,
		Start:      q.Start,
		Limit:      q.Limit,
		Descending: q.Order == Descending,
		Fields:     q.Fields,
	}
}
