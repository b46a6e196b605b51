package geometry

import (
	"fmt"

	"github.com/chazu/bimgen/pkg/model"
)

// Diagnostic codes.
const (
	CodeSolidFailed       = "SOLID_FAILED"
	CodeOutsideInterior   = "OUTSIDE_INTERIOR"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeUnknownHost       = "UNKNOWN_HOST"
	CodeHostFailed        = "HOST_FAILED"
	CodeNegativeSill      = "NEGATIVE_SILL"
	CodeExceedsLength     = "EXCEEDS_HOST_LENGTH"
	CodeExceedsHeight     = "EXCEEDS_HOST_HEIGHT"
	CodeOpeningOverlap    = "OPENING_OVERLAP"
	CodeVoidCheck         = "VOID_CHECK_FAILED"
	CodeRiserOutOfRange   = "RISER_OUT_OF_RANGE"
	CodeTreadTooShort     = "TREAD_TOO_SHORT"
	CodeRiseMismatch      = "RISE_MISMATCH"
	CodeRunTooLong        = "RUN_TOO_LONG"
	CodeFixtureTooTall    = "FIXTURE_TOO_TALL"
	CodeNegativeElevation = "NEGATIVE_ELEVATION"
)

// GeometryError reports an element that could not be synthesized. It is
// recoverable: the element is left out and synthesis continues.
type GeometryError struct {
	Code    string
	Message string
	Kind    model.Kind
	Element string // requested element name
	Level   int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %s %q on level %d: %s", e.Code, e.Kind, e.Element, e.Level, e.Message)
}

// Report summarizes a synthesis run.
type Report struct {
	Diagnostics []*GeometryError
	// Elements counts the synthesized elements per kind.
	Elements map[model.Kind]int
}

// Success reports whether every requested element was synthesized.
func (r *Report) Success() bool { return len(r.Diagnostics) == 0 }

// Total returns the number of synthesized elements.
func (r *Report) Total() int {
	n := 0
	for _, c := range r.Elements {
		n += c
	}
	return n
}
