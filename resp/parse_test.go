package resp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sensorRESP = `#
B050F03     Station:     NS085
B050F16     Network:     XX
B052F03     Location:    ??
B052F04     Channel:     BHZ
#
B053F03     Transfer function type:                A
B053F04     Stage sequence number:                 1
B053F05     Response in units lookup:              M/S - Velocity in Meters Per Second
B053F06     Response out units lookup:             V - Volts
B053F07     A0 normalization factor:               +8.31871E+04
B053F08     Normalization frequency:               +1.00000E+00
B053F09     Number of zeroes:                      2
B053F14     Number of poles:                       5
#              Complex zeroes:
#              i  real          imag          real_error    imag_error
B053F10-13     0  +0.00000E+00  +0.00000E+00  +0.00000E+00  +0.00000E+00
B053F10-13     1  +0.00000E+00  +0.00000E+00  +0.00000E+00  +0.00000E+00
#              Complex poles:
#              i  real          imag          real_error    imag_error
B053F15-18     0  -3.69100E-02  +3.71200E-02  +0.00000E+00  +0.00000E+00
B053F15-18     1  -3.69100E-02  -3.71200E-02  +0.00000E+00  +0.00000E+00
B053F15-18     2  -3.71000E+02  +0.00000E+00  +0.00000E+00  +0.00000E+00
B053F15-18     3  -3.73000E+02  +4.29000E+02  +0.00000E+00  +0.00000E+00
B053F15-18     4  -3.73000E+02  -4.29000E+02  +0.00000E+00  +0.00000E+00
#
B058F03     Stage sequence number:                 1
B058F04     Sensitivity:                           +7.54300E+02
B058F05     Frequency of sensitivity:              +1.00000E+00
#
B054F03     Response type:                         D
B054F04     Stage sequence number:                 2
B054F05     Response in units lookup:              V - Volts
B054F06     Response out units lookup:             COUNTS - Digital Counts
B054F07     Number of numerators:                  1
B054F10     Number of denominators:                0
#              Numerator coefficients:
#              i  coefficient   error
B054F08-09     0  +1.00000E+00  +0.00000E+00
#
B057F03     Stage sequence number:                 2
B057F04     Input sample rate (HZ):                2.56000E+04
B057F05     Decimation factor:                     00004
B057F06     Decimation offset:                     00000
#
B058F03     Stage sequence number:                 2
B058F04     Sensitivity:                           +4.00000E+05
B058F05     Frequency of sensitivity:              +1.00000E+00
#
B058F03     Stage sequence number:                 0
B058F04     Sensitivity:                           +3.01720E+08
B058F05     Frequency of sensitivity:              +1.00000E+00
`

func TestParse_Stages(t *testing.T) {
	r, err := Parse(sensorRESP)
	require.NoError(t, err)

	require.Len(t, r.Stages, 2)

	pz := r.Stages[0]
	assert.Equal(t, 1, pz.Sequence)
	assert.Equal(t, TypePolesZeros, pz.Type)
	assert.Equal(t, "A", pz.TransferFunctionType)
	assert.Equal(t, "M/S", pz.InputUnits)
	assert.Equal(t, "Velocity in Meters Per Second", pz.InputUnitsDescription)
	assert.Equal(t, "V", pz.OutputUnits)
	assert.InEpsilon(t, 8.31871e4, pz.NormalizationFactor, 1e-9)
	assert.Equal(t, 1.0, pz.NormalizationFrequency)
	assert.Len(t, pz.Zeros, 2)
	require.Len(t, pz.Poles, 5)
	assert.Equal(t, complex(-3.691e-2, 3.712e-2), pz.Poles[0])
	assert.InEpsilon(t, 754.3, pz.Gain, 1e-9)
	assert.Equal(t, 1.0, pz.GainFrequency)

	coef := r.Stages[1]
	assert.Equal(t, 2, coef.Sequence)
	assert.Equal(t, TypeCoefficients, coef.Type)
	assert.Equal(t, "V", coef.InputUnits)
	assert.Equal(t, "COUNTS", coef.OutputUnits)
	assert.Equal(t, 1, coef.Numerators)
	assert.Equal(t, 0, coef.Denominators)
	assert.Equal(t, 4, coef.DecimationFactor)
	assert.InEpsilon(t, 2.56e4, coef.InputSampleRate, 1e-9)
	assert.InEpsilon(t, 4.0e5, coef.Gain, 1e-9)
}

func TestParse_OverallSensitivity(t *testing.T) {
	r, err := Parse(sensorRESP)
	require.NoError(t, err)

	assert.InEpsilon(t, 3.0172e8, r.Sensitivity, 1e-9)
	assert.Equal(t, 1.0, r.Frequency)
	assert.Equal(t, "M/S", r.InputUnits)
	assert.Equal(t, "COUNTS", r.OutputUnits)
	assert.Equal(t, "Digital Counts", r.OutputUnitsDescription)
}

func TestParse_RejectsPolynomial(t *testing.T) {
	doc := `B062F03     Transfer function type:                P
B062F04     Stage sequence number:                 1
`
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blockette 62")
}

func TestParse_RejectsMultiChannel(t *testing.T) {
	doc := sensorRESP + "B052F04     Channel:     BHN\n"
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one channel")
}

func TestParse_RejectsNonRESP(t *testing.T) {
	_, err := Parse("this is not a RESP document\n")
	require.Error(t, err)
}

func TestParse_RejectsEmptyStages(t *testing.T) {
	doc := `B050F03     Station:     TST
B052F04     Channel:     BHZ
`
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response stages")
}

func TestParse_FieldBeforeStageNumber(t *testing.T) {
	doc := `B053F07     A0 normalization factor:               +1.00000E+00
`
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before any stage sequence number")
}

func TestResponse_String(t *testing.T) {
	r, err := Parse(sensorRESP)
	require.NoError(t, err)

	s := r.String()
	assert.True(t, strings.HasPrefix(s, "Channel Response"))
	assert.Contains(t, s, "From M/S (Velocity in Meters Per Second) to COUNTS (Digital Counts)")
	assert.Contains(t, s, "2 stages:")
	assert.Contains(t, s, "Stage 1: PolesZerosResponseStage from M/S to V, gain: 754.3")
	assert.Contains(t, s, "Stage 2: CoefficientsTypeResponseStage from V to COUNTS, gain: 400000")
}
