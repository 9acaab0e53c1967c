package resp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// RecalculateOverallSensitivity recomputes the overall sensitivity from
// the current stage sequence, evaluated at the response's reference
// frequency (falling back to 1 Hz when none is set). Each stage
// contributes its gain; poles/zeros stages whose gain was defined at a
// different frequency are corrected by the ratio of their transfer
// function magnitudes.
//
// The stage sequence is never modified. On error the previous
// sensitivity value is left in place, so a failed recalculation is
// recoverable by the caller.
func (r *Response) RecalculateOverallSensitivity() error {
	if len(r.Stages) == 0 {
		return errors.New("response has no stages")
	}
	freq := r.Frequency
	if freq <= 0 {
		freq = 1.0
	}

	// The end-to-end units follow the (possibly spliced) stage chain
	// regardless of whether the sensitivity itself can be computed.
	r.updateUnits()

	total := 1.0
	for _, st := range r.Stages {
		if st.Gain <= 0 {
			return fmt.Errorf("stage %d has non-positive gain %g", st.Sequence, st.Gain)
		}
		g := st.Gain
		if st.Type == TypePolesZeros && st.GainFrequency != freq {
			at, err := st.normalizedMagnitude(freq)
			if err != nil {
				return err
			}
			ref, err := st.normalizedMagnitude(st.GainFrequency)
			if err != nil {
				return err
			}
			if ref == 0 {
				return fmt.Errorf("stage %d transfer function is zero at its gain frequency %g Hz",
					st.Sequence, st.GainFrequency)
			}
			g *= at / ref
		}
		total *= g
	}

	r.Sensitivity = total
	r.Frequency = freq
	return nil
}

// normalizedMagnitude evaluates |H(f)| of the stage's poles/zeros
// transfer function, without the stage gain.
func (st *Stage) normalizedMagnitude(f float64) (float64, error) {
	var s complex128
	switch st.TransferFunctionType {
	case "A", "":
		s = complex(0, 2*math.Pi*f)
	case "B":
		s = complex(0, f)
	default:
		return 0, fmt.Errorf("stage %d: unsupported transfer function type %q",
			st.Sequence, st.TransferFunctionType)
	}

	h := complex(st.NormalizationFactor, 0)
	if st.NormalizationFactor == 0 {
		h = 1
	}
	for _, z := range st.Zeros {
		h *= s - z
	}
	for _, p := range st.Poles {
		d := s - p
		if d == 0 {
			return 0, fmt.Errorf("stage %d has a pole at the evaluation frequency %g Hz",
				st.Sequence, f)
		}
		h /= d
	}

	m := cmplx.Abs(h)
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return 0, fmt.Errorf("stage %d poles/zeros chain is degenerate at %g Hz", st.Sequence, f)
	}
	return m, nil
}
