package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DimensionMismatchError reports a malformed similarity matrix: not square,
// not symmetric within tolerance, bad diagonal, or a missing pair.
type DimensionMismatchError struct {
	Rows   int
	Cols   int
	Reason string
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("similarity matrix %dx%d: %s", e.Rows, e.Cols, e.Reason)
}

// MissingScoreError reports labels present in the matrix but absent from a
// provided score map. Labels are sorted for stable messages.
type MissingScoreError struct {
	Labels []Label
}

func (e *MissingScoreError) Error() string {
	names := make([]string, len(e.Labels))
	for i, l := range e.Labels {
		names[i] = string(l)
	}
	sort.Strings(names)
	return fmt.Sprintf("missing scores for %d label(s): %s", len(names), strings.Join(names, ", "))
}

// InvalidThresholdError reports a similarity threshold outside (0,1].
type InvalidThresholdError struct {
	Threshold float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("threshold %v outside (0,1]", e.Threshold)
}

// LookupError reports a failure of an external collaborator (similarity or
// annotation lookup). It names the operation and the label(s) involved and
// wraps the underlying cause.
type LookupError struct {
	Op    string
	Label Label
	Other Label
	Err   error
}

func (e *LookupError) Error() string {
	if e.Other != "" {
		return fmt.Sprintf("%s lookup for (%s, %s): %v", e.Op, e.Label, e.Other, e.Err)
	}
	return fmt.Sprintf("%s lookup for %s: %v", e.Op, e.Label, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
