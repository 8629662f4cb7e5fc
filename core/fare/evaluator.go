package fare

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ngworks1909/pulse-backend/core/model"
)

// ErrNoQuotes is returned when a fare computation is attempted on an empty
// quote list. Callers must treat it as "skip this trip", never as a price.
var ErrNoQuotes = errors.New("fare: no quotes")

// Summary returns the minimum and mean fare across all quotes. The minimum
// drives alert evaluation; the mean is carried on snapshots so fare history
// keeps a sense of the price spread.
func Summary(quotes []model.Quote) (min, mean float64, err error) {
	if len(quotes) == 0 {
		return 0, 0, ErrNoQuotes
	}
	f := make([]float64, len(quotes))
	for i, q := range quotes {
		f[i] = q.Fare
	}
	return floats.Min(f), stat.Mean(f, nil), nil
}
