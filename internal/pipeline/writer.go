package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/forecast"
	"github.com/velocityiq/backend-go/internal/repository"
)

// Writer persists quantile forecasts as one record per product per
// horizon day, replacing the previous future window wholesale.
type Writer struct {
	forecasts repository.ForecastRepository
	now       func() time.Time
}

func NewWriter(forecasts repository.ForecastRepository) *Writer {
	return &Writer{
		forecasts: forecasts,
		now:       time.Now,
	}
}

// Write stores the forecast set and returns the number of records
// written. Rounding to two decimals happens here, at write time. The
// underlying replace is transactional, so a failure leaves the previous
// forecast window intact.
func (w *Writer) Write(ctx context.Context, forecasts map[int64]forecast.Forecast, horizon int) (int, error) {
	now := w.now()
	runDate := dateOnly(now)

	records := make([]domain.ForecastRecord, 0, len(forecasts)*horizon)
	for productID, fc := range forecasts {
		for day := 0; day < horizon; day++ {
			records = append(records, domain.ForecastRecord{
				ProductID:               productID,
				Date:                    runDate.AddDate(0, 0, day+1),
				PredictedDemand:         round2(fc.Median[day]),
				ConfidenceIntervalLower: round2(fc.LowerBound[day]),
				ConfidenceIntervalUpper: round2(fc.UpperBound[day]),
				CreatedAt:               now,
			})
		}
	}

	if err := w.forecasts.ReplaceForecasts(ctx, runDate, records); err != nil {
		return 0, &domain.PersistenceError{Op: "forecast replacement", Err: err}
	}

	return len(records), nil
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
