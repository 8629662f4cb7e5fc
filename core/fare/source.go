package fare

import (
	"context"

	"github.com/ngworks1909/pulse-backend/core/model"
)

// Source returns the current quotes for a route and travel date. The date uses
// the "02-Jan-2006" format expected by the search API. Implementations may
// return an empty slice when no service operates on the route that day.
type Source interface {
	Quotes(ctx context.Context, originCode, destinationCode, date string) ([]model.Quote, error)
}
