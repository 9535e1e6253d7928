package attendance

import (
	"errors"
	"fmt"
	"strings"
)

// Attendance domain errors
var (
	ErrRecordNotFound       = errors.New("processed record not found")
	ErrCorrectionNotFound   = errors.New("manual correction not found")
	ErrOccurrenceNotFound   = errors.New("no occurrence set for this day")
	ErrEmptyCorrection      = errors.New("correction must set at least one punch")
	ErrNoPunchesInRequest   = errors.New("no punches in request")
	ErrRecalculationPending = errors.New("saved, but recalculation failed and was queued for retry")
)

// KeyError is a recomputation failure for one (employee, date).
type KeyError struct {
	Key RecalcKey
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("recalculate %s: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// BatchError aggregates the per-key failures of a batch recalculation. The
// batch itself keeps going when individual keys fail.
type BatchError struct {
	Failures []*KeyError
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%d recalculation(s) failed: %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}
