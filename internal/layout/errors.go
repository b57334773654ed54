package layout

import "fmt"

// DecodeError indicates a single page failed to decode. It is non-fatal:
// Extract substitutes an empty page with the same PageIndex and continues
// (§7).
type DecodeError struct {
	PageIndex int
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode page %d: %v", e.PageIndex, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidGeometry indicates the decoder returned a non-finite number
// (NaN/Inf) for a geometric field. The pipeline coerces the value to 0 or
// clamps it into [0,1] rather than failing (§7); this type exists so a
// caller that wants to know it happened can inspect it via the error
// chain, but Analyze never returns it directly.
type InvalidGeometry struct {
	PageIndex int
	Field     string
}

func (e *InvalidGeometry) Error() string {
	return fmt.Sprintf("page %d: invalid geometry field %q coerced", e.PageIndex, e.Field)
}

// EmptyDocument indicates the decoder reported zero pages. This is not a
// failure: Analyze returns an empty NarrativeIndex (§7).
var ErrEmptyDocument = fmt.Errorf("empty document: numPages is 0")
