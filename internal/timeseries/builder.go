// backend-go/internal/timeseries/builder.go
package timeseries

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/repository"
)

const (
	// DefaultLookbackDays is the transaction history window.
	DefaultLookbackDays = 90

	// defaultPadDemand is used when a series has no real points to average.
	defaultPadDemand = 10.0

	// Synthetic series parameters: demand drawn from N(mean, stddev),
	// clamped at zero, capped at maxSyntheticPoints days.
	syntheticMean      = 10.0
	syntheticStdDev    = 3.0
	maxSyntheticPoints = 30
)

// Builder turns raw transaction history into daily demand series. It
// never fails: products without usable history get padded or synthetic
// series so the forecast request can still include them.
type Builder struct {
	transactions repository.TransactionRepository
	lookbackDays int
	now          func() time.Time
	rng          *rand.Rand
}

func NewBuilder(transactions repository.TransactionRepository, lookbackDays int) *Builder {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	return &Builder{
		transactions: transactions,
		lookbackDays: lookbackDays,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build returns the demand series for one product. Provenance records
// whether the series is real history, padded history, or fully synthetic.
func (b *Builder) Build(ctx context.Context, product domain.Product) domain.DemandSeries {
	cutoff := b.now().AddDate(0, 0, -b.lookbackDays)

	transactions, err := b.transactions.ListByProduct(ctx, product.ID, cutoff)
	if err != nil {
		log.Error().Err(err).Int64("product_id", product.ID).Str("sku", product.SKU).
			Msg("failed to load transaction history, falling back to synthetic series")
		return b.synthetic(product)
	}

	if len(transactions) == 0 {
		log.Warn().Int64("product_id", product.ID).Str("sku", product.SKU).
			Msg("no transaction history, generating synthetic series")
		return b.synthetic(product)
	}

	series := aggregateDaily(product, transactions)
	if series.Len() < domain.MinSeriesPoints {
		series = pad(series)
	}

	return series
}

// aggregateDaily sums outbound quantities per calendar day, in date order.
func aggregateDaily(product domain.Product, transactions []domain.Transaction) domain.DemandSeries {
	daily := make(map[string]float64)
	for _, txn := range transactions {
		if txn.Type != domain.TransactionOutbound {
			continue
		}
		day := txn.CreatedAt.Format("2006-01-02")
		daily[day] += math.Abs(float64(txn.Quantity))
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]domain.DemandPoint, 0, len(days))
	for _, day := range days {
		date, _ := time.Parse("2006-01-02", day)
		points = append(points, domain.DemandPoint{Date: date, Quantity: daily[day]})
	}

	return domain.DemandSeries{
		ProductID:  product.ID,
		SKU:        product.SKU,
		Points:     points,
		Provenance: domain.SeriesReal,
	}
}

// pad extends a short series to the minimum length by repeating the mean
// of its existing points, or a fixed default when there are none.
func pad(series domain.DemandSeries) domain.DemandSeries {
	fill := defaultPadDemand
	if len(series.Points) > 0 {
		var sum float64
		for _, p := range series.Points {
			sum += p.Quantity
		}
		fill = sum / float64(len(series.Points))
	}

	last := time.Now()
	if n := len(series.Points); n > 0 {
		last = series.Points[n-1].Date
	}

	for series.Len() < domain.MinSeriesPoints {
		last = last.AddDate(0, 0, 1)
		series.Points = append(series.Points, domain.DemandPoint{Date: last, Quantity: fill})
	}
	series.Provenance = domain.SeriesPadded

	return series
}

// synthetic fabricates a plausible demand history for products with no
// transactions at all.
func (b *Builder) synthetic(product domain.Product) domain.DemandSeries {
	n := min(maxSyntheticPoints, b.lookbackDays)

	points := make([]domain.DemandPoint, n)
	today := b.now()
	for i := range points {
		demand := math.Max(0, syntheticMean+b.rng.NormFloat64()*syntheticStdDev)
		points[i] = domain.DemandPoint{
			Date:     today.AddDate(0, 0, i-n),
			Quantity: demand,
		}
	}

	return domain.DemandSeries{
		ProductID:  product.ID,
		SKU:        product.SKU,
		Points:     points,
		Provenance: domain.SeriesSynthetic,
	}
}
