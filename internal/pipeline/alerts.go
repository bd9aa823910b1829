package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/repository"
)

const (
	// stockoutAlertDays is the runway at or under which a stock-low
	// alert fires; stockoutUrgentDays escalates it to high severity.
	stockoutAlertDays  = 7.0
	stockoutUrgentDays = 3.0

	// spikeWindow and spikeFactor define a demand spike: the mean of the
	// next spikeWindow days exceeding the near-term mean by the factor.
	spikeWindow = 3
	spikeFactor = 1.5
)

// AlertGenerator evaluates the alerting rules over classifier output.
// The rules are independent: a product at its reorder point with a short
// runway raises both a stock-low and a reorder-breach alert in the same
// run. Deduplication across runs is the resolver's job, not ours.
type AlertGenerator struct {
	alerts repository.AlertRepository
	now    func() time.Time
}

func NewAlertGenerator(alerts repository.AlertRepository) *AlertGenerator {
	return &AlertGenerator{
		alerts: alerts,
		now:    time.Now,
	}
}

// Generate returns the alerts fired by all rules across the assessments.
// Each rule fires at most once per product per run.
func (g *AlertGenerator) Generate(assessments []Assessment) []domain.AlertRecord {
	now := g.now()

	var alerts []domain.AlertRecord
	for _, a := range assessments {
		if alert := stockLowAlert(a, now); alert != nil {
			alerts = append(alerts, *alert)
		}
		if alert := demandSpikeAlert(a, now); alert != nil {
			alerts = append(alerts, *alert)
		}
		if alert := reorderBreachAlert(a, now); alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	return alerts
}

// Save writes the alerts through the repository. Batch failures are
// surfaced as a PersistenceError; callers treat them as non-fatal.
func (g *AlertGenerator) Save(ctx context.Context, alerts []domain.AlertRecord) error {
	if len(alerts) == 0 {
		return nil
	}

	if err := g.alerts.InsertAlerts(ctx, alerts); err != nil {
		return &domain.PersistenceError{Op: "alerts", Err: err}
	}

	return nil
}

func stockLowAlert(a Assessment, now time.Time) *domain.AlertRecord {
	if a.DaysUntilStockout > stockoutAlertDays {
		return nil
	}

	severity := domain.SeverityMedium
	if a.DaysUntilStockout <= stockoutUrgentDays {
		severity = domain.SeverityHigh
	}

	return &domain.AlertRecord{
		ProductID: a.Product.ID,
		Type:      domain.AlertTypeStockLow,
		Severity:  severity,
		Title:     fmt.Sprintf("Stock Alert: %s", a.Product.Name),
		Description: fmt.Sprintf("Predicted stockout in %.1f days. Current stock: %d, avg daily demand: %.1f",
			a.DaysUntilStockout, a.Product.StockLevel(), a.AvgDailyDemand),
		CreatedAt: now,
	}
}

func demandSpikeAlert(a Assessment, now time.Time) *domain.AlertRecord {
	recent := meanPrefix(a.Forecast.Median, spikeWindow)
	week := meanPrefix(a.Forecast.Median, nearTermWindow)

	if recent <= week*spikeFactor {
		return nil
	}

	return &domain.AlertRecord{
		ProductID: a.Product.ID,
		Type:      domain.AlertTypeDemandSpike,
		Severity:  domain.SeverityMedium,
		Title:     fmt.Sprintf("Demand Spike: %s", a.Product.Name),
		Description: fmt.Sprintf("Predicted demand spike detected. 3-day avg: %.1f, 7-day avg: %.1f",
			recent, week),
		CreatedAt: now,
	}
}

func reorderBreachAlert(a Assessment, now time.Time) *domain.AlertRecord {
	stock := a.Product.StockLevel()
	if stock > a.Product.ReorderPoint {
		return nil
	}

	return &domain.AlertRecord{
		ProductID: a.Product.ID,
		Type:      domain.AlertTypeStockLow,
		Severity:  domain.SeverityHigh,
		Title:     fmt.Sprintf("Reorder Point Reached: %s", a.Product.Name),
		Description: fmt.Sprintf("Current stock (%d) at or below reorder point (%d)",
			stock, a.Product.ReorderPoint),
		CreatedAt: now,
	}
}
