package pipeline

import (
	"math"

	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/forecast"
)

const (
	// nearTermWindow is how many leading forecast days feed the runway
	// math.
	nearTermWindow = 7

	// demandFloor keeps days-until-stockout finite when predicted demand
	// is near zero.
	demandFloor = 0.1
)

// Assess computes a product's near-term demand average, projected days
// until stockout, and stock status from its median forecast.
func Assess(product domain.Product, fc forecast.Forecast) Assessment {
	avg := meanPrefix(fc.Median, nearTermWindow)
	stock := product.StockLevel()

	return Assessment{
		Product:           product,
		Forecast:          fc,
		AvgDailyDemand:    avg,
		DaysUntilStockout: float64(stock) / math.Max(avg, demandFloor),
		Status:            domain.ClassifyStock(stock, product.ReorderPoint, avg),
	}
}

// meanPrefix averages the first n values, or all of them when the slice
// is shorter.
func meanPrefix(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range values[:n] {
		sum += v
	}

	return sum / float64(n)
}
