// backend-go/internal/report/csv.go
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/repository"
	"github.com/velocityiq/backend-go/internal/storage"
)

var csvHeader = []string{
	"product_name",
	"sku",
	"category",
	"current_stock",
	"reorder_point",
	"unit_cost",
	"supplier_name",
	"lead_time_days",
	"reliability_score",
	"forecast_date",
	"predicted_demand",
	"confidence_interval_lower",
	"confidence_interval_upper",
	"forecast_created",
}

// Exporter writes the forecast report CSV: every future forecast day
// joined with product and supplier data, ordered by date. When object
// storage is configured the finished file is also uploaded.
type Exporter struct {
	forecasts repository.ForecastRepository
	store     storage.ObjectStorage
	dir       string
	now       func() time.Time
}

// NewExporter builds an exporter writing into dir. store may be nil, in
// which case reports stay local.
func NewExporter(forecasts repository.ForecastRepository, store storage.ObjectStorage, dir string) *Exporter {
	return &Exporter{
		forecasts: forecasts,
		store:     store,
		dir:       dir,
		now:       time.Now,
	}
}

// Export writes the report and returns its path and row count. An empty
// forecast table still produces a header-only file so downstream
// consumers see a fresh report either way.
func (e *Exporter) Export(ctx context.Context) (string, int, error) {
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	rows, err := e.forecasts.ListReportRows(ctx, today)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load report rows: %w", err)
	}
	if len(rows) == 0 {
		log.Warn().Msg("no forecast rows to export, writing empty report")
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := fmt.Sprintf("forecast_report_%s.csv", now.Format("20060102_150405"))
	path := filepath.Join(e.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create report file: %w", err)
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return "", 0, err
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close report file: %w", err)
	}

	if e.store != nil {
		if err := e.store.UploadFile(ctx, filename, path); err != nil {
			return path, len(rows), fmt.Errorf("report written to %s but upload failed: %w", path, err)
		}
		log.Info().Str("key", filename).Msg("report uploaded to object storage")
	}

	return path, len(rows), nil
}

// WriteCSV writes the report header and rows to w.
func WriteCSV(w io.Writer, rows []domain.ForecastReportRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ProductName,
			row.SKU,
			row.Category,
			formatNullableInt(row.CurrentStock),
			strconv.Itoa(row.ReorderPoint),
			strconv.FormatFloat(row.UnitCost, 'f', 2, 64),
			formatNullableString(row.SupplierName),
			formatNullableInt(row.LeadTimeDays),
			formatNullableFloat(row.ReliabilityScore),
			row.ForecastDate,
			strconv.FormatFloat(row.PredictedDemand, 'f', 2, 64),
			strconv.FormatFloat(row.ConfidenceIntervalLower, 'f', 2, 64),
			strconv.FormatFloat(row.ConfidenceIntervalUpper, 'f', 2, 64),
			row.ForecastCreated.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	return nil
}

func formatNullableInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatNullableString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatNullableFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
