// Package errors provides the error and warning types used across the
// pipeline. Errors carry structured fields and a stack trace via
// cockroachdb/errors so that log output can point at the failing stage.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("pml-warning: %v\n", w)
	}
)

// SetWarningHandler replaces the process-wide warning handler. Warnings are
// advisory (a statistic that could not be computed, for example) and never
// abort a pipeline stage on their own.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn emits a warning through the configured handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	if warningHandler != nil {
		warningHandler(w)
	}
}

// UndefinedMetricWarning is raised when a statistic is ill-defined for the
// given inputs, e.g. a paired test over a zero-variance difference vector.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is not computable: %s", w.Metric, w.Condition)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition}
}

// DegenerateVarianceWarning is raised when the paired per-fold accuracy
// differences between two models have zero variance, which makes the paired
// significance test undefined.
type DegenerateVarianceWarning struct {
	ModelA string
	ModelB string
}

func (w *DegenerateVarianceWarning) Error() string {
	return fmt.Sprintf("paired accuracy differences between %s and %s have zero variance; significance test undefined", w.ModelA, w.ModelB)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *DegenerateVarianceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("model_a", w.ModelA).
		Str("model_b", w.ModelB).
		Str("type", "DegenerateVarianceWarning")
}

// NewDegenerateVarianceWarning creates a new DegenerateVarianceWarning.
func NewDegenerateVarianceWarning(modelA, modelB string) *DegenerateVarianceWarning {
	return &DegenerateVarianceWarning{ModelA: modelA, ModelB: modelB}
}

// NotFittedError is returned when Predict or Transform is called on a model
// that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("pml: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when an input matrix has an unexpected shape.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("pml: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// SchemaError is returned when a dataset's feature columns do not match the
// schema another pipeline stage requires. Feature alignment is validated up
// front so the mismatch never surfaces as a downstream numeric error.
type SchemaError struct {
	Op      string
	Missing []string
	Extra   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("pml: %s: feature schema mismatch (missing: %v, unexpected: %v)", e.Op, e.Missing, e.Extra)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SchemaError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("missing", e.Missing).
		Strs("extra", e.Extra).
		Str("type", "SchemaError")
}

// NewSchemaError creates a SchemaError with a stack trace attached.
func NewSchemaError(op string, missing, extra []string) error {
	err := &SchemaError{Op: op, Missing: missing, Extra: extra}
	return errors.WithStack(err)
}

// ValidationError is returned when a parameter fails validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pml: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is invalid for an operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("pml: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general error raised by a model operation.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pml: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("pml: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// TrainingError is returned when a cross-validation fold or a final refit
// fails for one model. It is fatal for that model only: the surrounding
// comparison proceeds with the remaining models and reports the failure.
type TrainingError struct {
	ModelName string
	Fold      int // -1 for the final refit
	Err       error
}

func (e *TrainingError) Error() string {
	if e.Fold < 0 {
		return fmt.Sprintf("pml: %s: final refit failed: %v", e.ModelName, e.Err)
	}
	return fmt.Sprintf("pml: %s: training failed on fold %d: %v", e.ModelName, e.Fold, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *TrainingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Int("fold", e.Fold).
		Str("type", "TrainingError")
}

// NewTrainingError creates a TrainingError with a stack trace attached.
func NewTrainingError(modelName string, fold int, err error) error {
	trainErr := &TrainingError{ModelName: modelName, Fold: fold, Err: err}
	return errors.WithStack(trainErr)
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData is returned when an operation receives no data.
	ErrEmptyData = New("empty data")

	// ErrNoFeatures is returned when cleaning leaves zero usable feature
	// columns. No model can be trained from such a dataset.
	ErrNoFeatures = New("no numeric feature columns remain after cleaning")

	// ErrSingularMatrix is returned when a matrix inversion or solve fails.
	ErrSingularMatrix = New("singular matrix")
)
