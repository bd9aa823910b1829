package domain

import "fmt"

// ConnectionError indicates the persistent store or the forecasting
// service could not be reached. Fatal to a pipeline run.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// InsufficientDataError reports a demand series too short for the
// forecasting service. It never escapes the pipeline; the series builder
// handles it by padding or synthesis.
type InsufficientDataError struct {
	ProductID int64
	Points    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("product %d: %d demand points, need at least %d", e.ProductID, e.Points, MinSeriesPoints)
}

// ServiceResponseError indicates a malformed or incomplete response from
// the forecasting service. Fatal to a pipeline run.
type ServiceResponseError struct {
	Reason string
	Err    error
}

func (e *ServiceResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("forecast service response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("forecast service response: %s", e.Reason)
}

func (e *ServiceResponseError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed store write. Forecast replacement treats
// it as fatal; alert batches log it and continue.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
