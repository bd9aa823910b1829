package timeseries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/velocityiq/backend-go/internal/domain"
)

type fakeTransactionRepo struct {
	transactions map[int64][]domain.Transaction
	err          error
}

func (f *fakeTransactionRepo) ListByProduct(ctx context.Context, productID int64, since time.Time) ([]domain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.transactions[productID], nil
}

func (f *fakeTransactionRepo) DailyOutboundDemand(ctx context.Context, productID int64, since time.Time) ([]domain.ChartHistoryPoint, error) {
	return nil, nil
}

func day(offset int) time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func outbound(productID int64, qty int, at time.Time) domain.Transaction {
	return domain.Transaction{ProductID: productID, Type: domain.TransactionOutbound, Quantity: qty, CreatedAt: at}
}

func TestBuildAggregatesOutboundByDay(t *testing.T) {
	repo := &fakeTransactionRepo{transactions: map[int64][]domain.Transaction{
		1: {
			outbound(1, 3, day(0)),
			outbound(1, 4, day(0).Add(2*time.Hour)), // same calendar day
			{ProductID: 1, Type: domain.TransactionInbound, Quantity: 50, CreatedAt: day(1)},
			outbound(1, -5, day(1)), // negative quantities count by magnitude
			outbound(1, 2, day(2)),
			outbound(1, 6, day(3)),
			outbound(1, 1, day(5)), // gap at day 4 stays a gap
		},
	}}

	builder := NewBuilder(repo, 90)
	series := builder.Build(context.Background(), domain.Product{ID: 1, SKU: "WH-001"})

	require.Equal(t, domain.SeriesReal, series.Provenance)
	require.Equal(t, 5, series.Len())
	require.Equal(t, []float64{7, 5, 2, 6, 1}, series.Values())

	for i := 1; i < series.Len(); i++ {
		require.True(t, series.Points[i].Date.After(series.Points[i-1].Date),
			"dates must ascend")
	}
}

func TestBuildPadsShortSeriesWithMean(t *testing.T) {
	repo := &fakeTransactionRepo{transactions: map[int64][]domain.Transaction{
		7: {
			outbound(7, 4, day(0)),
			outbound(7, 8, day(1)),
		},
	}}

	builder := NewBuilder(repo, 90)
	series := builder.Build(context.Background(), domain.Product{ID: 7, SKU: "SP-007"})

	require.Equal(t, domain.SeriesPadded, series.Provenance)
	require.Equal(t, domain.MinSeriesPoints, series.Len())
	require.Equal(t, []float64{4, 8, 6, 6, 6}, series.Values())
}

func TestBuildPadsWithDefaultWhenNoOutbound(t *testing.T) {
	repo := &fakeTransactionRepo{transactions: map[int64][]domain.Transaction{
		3: {
			{ProductID: 3, Type: domain.TransactionInbound, Quantity: 20, CreatedAt: day(0)},
		},
	}}

	builder := NewBuilder(repo, 90)
	series := builder.Build(context.Background(), domain.Product{ID: 3, SKU: "CB-003"})

	require.Equal(t, domain.SeriesPadded, series.Provenance)
	require.Equal(t, domain.MinSeriesPoints, series.Len())
	require.Equal(t, []float64{10, 10, 10, 10, 10}, series.Values())
}

func TestBuildSyntheticWhenNoHistory(t *testing.T) {
	repo := &fakeTransactionRepo{transactions: map[int64][]domain.Transaction{}}

	builder := NewBuilder(repo, 90)
	series := builder.Build(context.Background(), domain.Product{ID: 9, SKU: "NEW-009"})

	require.Equal(t, domain.SeriesSynthetic, series.Provenance)
	require.Equal(t, maxSyntheticPoints, series.Len())
	for _, p := range series.Points {
		require.GreaterOrEqual(t, p.Quantity, 0.0)
	}
}

func TestBuildSyntheticCappedByLookback(t *testing.T) {
	repo := &fakeTransactionRepo{transactions: map[int64][]domain.Transaction{}}

	builder := NewBuilder(repo, 10)
	series := builder.Build(context.Background(), domain.Product{ID: 9, SKU: "NEW-009"})

	require.Equal(t, 10, series.Len())
}

func TestBuildSyntheticOnRepositoryError(t *testing.T) {
	repo := &fakeTransactionRepo{err: errors.New("connection reset")}

	builder := NewBuilder(repo, 90)
	series := builder.Build(context.Background(), domain.Product{ID: 2, SKU: "ERR-002"})

	require.Equal(t, domain.SeriesSynthetic, series.Provenance)
	require.Equal(t, maxSyntheticPoints, series.Len())
	for _, p := range series.Points {
		require.GreaterOrEqual(t, p.Quantity, 0.0)
	}
}
