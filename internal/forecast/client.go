// backend-go/internal/forecast/client.go
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/velocityiq/backend-go/internal/config"
	"github.com/velocityiq/backend-go/internal/domain"
)

// quantileLevels is the fixed quantile set requested from the service.
var quantileLevels = []float64{0.1, 0.25, 0.5, 0.75, 0.9}

// maxBatchSize caps the batch size hint sent to the service.
const maxBatchSize = 32

// RequestItem is one product's series in the inference payload.
type RequestItem struct {
	Target []float64 `json:"target"`
	ItemID string    `json:"item_id"`
	Start  string    `json:"start"`
}

// Parameters are the global inference settings.
type Parameters struct {
	PredictionLength int       `json:"prediction_length"`
	QuantileLevels   []float64 `json:"quantile_levels"`
	Freq             string    `json:"freq"`
	BatchSize        int       `json:"batch_size"`
}

// Request is the full inference payload.
type Request struct {
	Inputs     []RequestItem `json:"inputs"`
	Parameters Parameters    `json:"parameters"`
}

// Prediction is one item's quantile forecast as returned on the wire.
// The service keys each quantile array by its level.
type Prediction struct {
	ItemID string    `json:"item_id"`
	P10    []float64 `json:"0.1"`
	P25    []float64 `json:"0.25"`
	P50    []float64 `json:"0.5"`
	P75    []float64 `json:"0.75"`
	P90    []float64 `json:"0.9"`
}

// Response is the service's inference response.
type Response struct {
	Predictions []Prediction `json:"predictions"`
}

// Forecast is the per-product quantile forecast handed to the pipeline,
// one value per horizon day.
type Forecast struct {
	Median     []float64
	LowerBound []float64
	UpperBound []float64
	Q25        []float64
	Q75        []float64
}

// Client talks to the forecasting service. The service is a black box
// behind the standard inference container contract: GET /ping for
// health, POST /invocations for inference.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(cfg config.ForecastConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		now: time.Now,
	}
}

// Ping checks that the service is reachable and ready.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return &domain.ConnectionError{Target: "forecast service", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ConnectionError{Target: "forecast service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.ConnectionError{
			Target: "forecast service",
			Err:    fmt.Errorf("ping returned status %d", resp.StatusCode),
		}
	}

	return nil
}

// Forecast batches every series of at least MinSeriesPoints into a single
// inference call and returns quantile forecasts keyed by product ID.
// Series too short to forecast are skipped; response items for SKUs that
// were never sent are ignored.
func (c *Client) Forecast(ctx context.Context, series []domain.DemandSeries, horizon int) (map[int64]Forecast, error) {
	inputs := make([]RequestItem, 0, len(series))
	productBySKU := make(map[string]int64, len(series))

	for _, s := range series {
		if s.Len() < domain.MinSeriesPoints {
			err := &domain.InsufficientDataError{ProductID: s.ProductID, Points: s.Len()}
			log.Warn().Err(err).Str("sku", s.SKU).Msg("series below minimum length, skipping product")
			continue
		}

		inputs = append(inputs, RequestItem{
			Target: s.Values(),
			ItemID: s.SKU,
			Start:  c.now().AddDate(0, 0, -s.Len()).Format("2006-01-02"),
		})
		productBySKU[s.SKU] = s.ProductID
	}

	if len(inputs) == 0 {
		return nil, nil
	}

	payload := Request{
		Inputs: inputs,
		Parameters: Parameters{
			PredictionLength: horizon,
			QuantileLevels:   quantileLevels,
			Freq:             "D",
			BatchSize:        min(maxBatchSize, len(inputs)),
		},
	}

	response, err := c.invoke(ctx, payload)
	if err != nil {
		return nil, err
	}

	forecasts := make(map[int64]Forecast, len(response.Predictions))
	for _, prediction := range response.Predictions {
		productID, ok := productBySKU[prediction.ItemID]
		if !ok {
			log.Warn().Str("item_id", prediction.ItemID).Msg("prediction for unknown item, ignoring")
			continue
		}

		if err := prediction.validate(horizon); err != nil {
			return nil, &domain.ServiceResponseError{Reason: err.Error()}
		}

		forecasts[productID] = Forecast{
			Median:     prediction.P50,
			LowerBound: prediction.P10,
			UpperBound: prediction.P90,
			Q25:        prediction.P25,
			Q75:        prediction.P75,
		}
	}

	return forecasts, nil
}

func (c *Client) invoke(ctx context.Context, payload Request) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inference payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invocations", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.ConnectionError{Target: "forecast service", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ConnectionError{Target: "forecast service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ServiceResponseError{
			Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &domain.ServiceResponseError{Reason: "malformed response body", Err: err}
	}

	return &response, nil
}

// validate rejects predictions whose quantile arrays do not cover the
// horizon exactly.
func (p Prediction) validate(horizon int) error {
	quantiles := map[string][]float64{
		"0.1":  p.P10,
		"0.25": p.P25,
		"0.5":  p.P50,
		"0.75": p.P75,
		"0.9":  p.P90,
	}

	for level, values := range quantiles {
		if len(values) != horizon {
			return fmt.Errorf("item %s: quantile %s has %d values, expected %d",
				p.ItemID, level, len(values), horizon)
		}
	}

	return nil
}
