package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/storage"
)

type fakeForecastRepo struct {
	rows []domain.ForecastReportRow
}

func (f *fakeForecastRepo) ReplaceForecasts(ctx context.Context, runDate time.Time, records []domain.ForecastRecord) error {
	return nil
}

func (f *fakeForecastRepo) CountFrom(ctx context.Context, from time.Time) (int, error) {
	return 0, nil
}

func (f *fakeForecastRepo) ListItems(ctx context.Context, from, to time.Time) ([]domain.ForecastItem, error) {
	return nil, nil
}

func (f *fakeForecastRepo) ListTrendRows(ctx context.Context, since time.Time) ([]domain.TrendRow, error) {
	return nil, nil
}

func (f *fakeForecastRepo) AvgDailyDemandSince(ctx context.Context, since time.Time) (map[int64]float64, error) {
	return nil, nil
}

func (f *fakeForecastRepo) ListChartForecasts(ctx context.Context, productID int64, from, to time.Time) ([]domain.ChartForecastPoint, error) {
	return nil, nil
}

func (f *fakeForecastRepo) ListReportRows(ctx context.Context, from time.Time) ([]domain.ForecastReportRow, error) {
	return f.rows, nil
}

type fakeStorage struct {
	uploads map[string]string
}

func (f *fakeStorage) UploadFile(ctx context.Context, key, path string) error {
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[key] = path
	return nil
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func reportRow() domain.ForecastReportRow {
	return domain.ForecastReportRow{
		ProductName:             "Wireless Headphones",
		SKU:                     "WH-001",
		Category:                "Electronics",
		CurrentStock:            intPtr(45),
		ReorderPoint:            20,
		UnitCost:                89.5,
		SupplierName:            strPtr("TechSupply Co"),
		LeadTimeDays:            intPtr(7),
		ReliabilityScore:        floatPtr(0.95),
		ForecastDate:            "2025-06-11",
		PredictedDemand:         12.35,
		ConfidenceIntervalLower: 8.1,
		ConfidenceIntervalUpper: 16.9,
		ForecastCreated:         time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.ForecastReportRow{reportRow()}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t,
		"product_name,sku,category,current_stock,reorder_point,unit_cost,supplier_name,lead_time_days,reliability_score,forecast_date,predicted_demand,confidence_interval_lower,confidence_interval_upper,forecast_created",
		lines[0])
	require.Equal(t,
		"Wireless Headphones,WH-001,Electronics,45,20,89.50,TechSupply Co,7,0.95,2025-06-11,12.35,8.10,16.90,2025-06-10T09:30:00Z",
		lines[1])
}

func TestWriteCSVNullableFields(t *testing.T) {
	row := reportRow()
	row.CurrentStock = nil
	row.SupplierName = nil
	row.LeadTimeDays = nil
	row.ReliabilityScore = nil

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.ForecastReportRow{row}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t,
		"Wireless Headphones,WH-001,Electronics,,20,89.50,,,,2025-06-11,12.35,8.10,16.90,2025-06-10T09:30:00Z",
		lines[1])
}

func TestExportWritesAndUploads(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStorage{}

	exporter := NewExporter(&fakeForecastRepo{rows: []domain.ForecastReportRow{reportRow()}}, store, dir)
	exporter.now = func() time.Time { return time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC) }

	path, count, err := exporter.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, filepath.Join(dir, "forecast_report_20250610_093000.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "WH-001")

	require.Equal(t, map[string]string{"forecast_report_20250610_093000.csv": path}, store.uploads)
}

func TestExportEmptyReport(t *testing.T) {
	dir := t.TempDir()

	exporter := NewExporter(&fakeForecastRepo{}, nil, dir)
	path, count, err := exporter.Export(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "header only")
}
