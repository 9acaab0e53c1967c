// Package resp parses SEED RESP instrument-response descriptions into an
// ordered sequence of processing stages and recomputes the overall chain
// sensitivity at a reference frequency.
package resp

import (
	"fmt"
	"strings"
)

// Stage types, derived from the blockettes a stage is described with.
const (
	TypePolesZeros   = "PolesZerosResponseStage"
	TypeCoefficients = "CoefficientsTypeResponseStage"
	TypeFIR          = "FIRResponseStage"
	TypeGain         = "ResponseStage"
)

// Stage is one step of a response processing chain: a transfer function
// (or plain gain) from its input units to its output units.
type Stage struct {
	Sequence    int
	Type        string
	InputUnits  string
	OutputUnits string

	InputUnitsDescription  string
	OutputUnitsDescription string

	// Stage gain (blockette 58).
	Gain          float64
	GainFrequency float64

	// Poles/zeros transfer function (blockette 53).
	TransferFunctionType   string // "A" Laplace rad/s, "B" Laplace Hz, "D" digital
	NormalizationFactor    float64
	NormalizationFrequency float64
	Zeros                  []complex128
	Poles                  []complex128

	// Coefficient counts (blockettes 54 and 61).
	Numerators   int
	Denominators int

	// Decimation (blockette 57).
	InputSampleRate  float64
	DecimationFactor int
}

// Response is a single-channel instrument response: stages in processing
// order plus the overall sensitivity defined at a reference frequency.
type Response struct {
	Stages      []*Stage
	Sensitivity float64
	Frequency   float64

	InputUnits  string
	OutputUnits string

	InputUnitsDescription  string
	OutputUnitsDescription string
}

// String renders the response the way an interactive session prints it:
// end-to-end units, the overall sensitivity, then one line per stage.
func (r *Response) String() string {
	var b strings.Builder
	b.WriteString("Channel Response\n")
	fmt.Fprintf(&b, "  From %s to %s\n",
		unitLabel(r.InputUnits, r.InputUnitsDescription),
		unitLabel(r.OutputUnits, r.OutputUnitsDescription))
	fmt.Fprintf(&b, "  Overall Sensitivity: %g defined at %.3f Hz\n", r.Sensitivity, r.Frequency)
	fmt.Fprintf(&b, "  %d stages:\n", len(r.Stages))
	for _, st := range r.Stages {
		fmt.Fprintf(&b, "    Stage %d: %s from %s to %s, gain: %g\n",
			st.Sequence, st.Type, st.InputUnits, st.OutputUnits, st.Gain)
	}
	return strings.TrimRight(b.String(), "\n")
}

func unitLabel(code, description string) string {
	if code == "" {
		return "UNKNOWN"
	}
	if description == "" {
		return code
	}
	return fmt.Sprintf("%s (%s)", code, description)
}
