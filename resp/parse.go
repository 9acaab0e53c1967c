package resp

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// lineRE matches one RESP field line: blockette number, field number
// (ranged for repeated fields like pole/zero rows), and the remainder.
var lineRE = regexp.MustCompile(`^B(\d{3})F(\d{2})(?:-\d{2})?\s+(.*)$`)

// Parse reads a RESP document describing a single channel. Repeated
// blockette-58 groups delimit the stages; the stage-0 group carries the
// overall sensitivity. Polynomial responses (blockette 62) are not
// supported.
func Parse(text string) (*Response, error) {
	p := &parser{
		r:      &Response{},
		stages: make(map[int]*Stage),
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		blockette, _ := strconv.Atoi(m[1])
		field, _ := strconv.Atoi(m[2])
		if err := p.field(blockette, field, m[3]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read RESP document: %w", err)
	}
	return p.finish()
}

type parser struct {
	r       *Response
	stages  map[int]*Stage
	cur     *Stage
	overall bool // current blockette-58 group is the stage-0 sensitivity

	pendingTF string // blockette-53 transfer function type precedes the stage number

	channels int
	sawField bool
}

// stage returns the stage with the given sequence number, creating and
// appending it in encounter order when new.
func (p *parser) stage(seq int) *Stage {
	if st, ok := p.stages[seq]; ok {
		return st
	}
	st := &Stage{Sequence: seq}
	p.stages[seq] = st
	p.r.Stages = append(p.r.Stages, st)
	return st
}

func (p *parser) field(blockette, field int, rest string) error {
	p.sawField = true
	switch blockette {
	case 50, 51:
		// station/network headers carry nothing the response needs
	case 52:
		if field == 4 {
			p.channels++
			if p.channels > 1 {
				return fmt.Errorf("RESP document describes more than one channel")
			}
		}
	case 53:
		return p.polesZerosField(field, rest)
	case 54:
		return p.coefficientsField(field, rest)
	case 57:
		return p.decimationField(field, rest)
	case 58:
		return p.gainField(field, rest)
	case 61:
		return p.firField(field, rest)
	case 62:
		return fmt.Errorf("polynomial response (blockette 62) is not supported")
	}
	return nil
}

// need returns the stage currently being described, erroring on
// documents that put value fields before any stage sequence number.
func (p *parser) need() (*Stage, error) {
	if p.cur == nil {
		return nil, fmt.Errorf("value field before any stage sequence number")
	}
	return p.cur, nil
}

func (p *parser) polesZerosField(field int, rest string) error {
	switch field {
	case 3:
		p.pendingTF = firstField(colonValue(rest))
		return nil
	case 4:
		seq, err := atoi(rest)
		if err != nil {
			return err
		}
		p.cur = p.stage(seq)
		p.cur.Type = TypePolesZeros
		p.cur.TransferFunctionType = p.pendingTF
		return nil
	}
	st, err := p.need()
	if err != nil {
		return err
	}
	switch field {
	case 5, 6:
		return p.unitsField(field == 5, rest)
	case 7:
		return floatField(&st.NormalizationFactor, rest)
	case 8:
		return floatField(&st.NormalizationFrequency, rest)
	case 10:
		z, err := parseComplexRow(rest)
		if err != nil {
			return err
		}
		st.Zeros = append(st.Zeros, z)
	case 15:
		pole, err := parseComplexRow(rest)
		if err != nil {
			return err
		}
		st.Poles = append(st.Poles, pole)
	}
	return nil
}

func (p *parser) coefficientsField(field int, rest string) error {
	if field == 4 {
		seq, err := atoi(rest)
		if err != nil {
			return err
		}
		p.cur = p.stage(seq)
		if p.cur.Type == "" {
			p.cur.Type = TypeCoefficients
		}
		return nil
	}
	st, err := p.need()
	if err != nil {
		return err
	}
	switch field {
	case 5, 6:
		return p.unitsField(field == 5, rest)
	case 7:
		return intField(&st.Numerators, rest)
	case 10:
		return intField(&st.Denominators, rest)
	}
	return nil
}

func (p *parser) decimationField(field int, rest string) error {
	if field == 3 {
		seq, err := atoi(rest)
		if err != nil {
			return err
		}
		p.cur = p.stage(seq)
		return nil
	}
	st, err := p.need()
	if err != nil {
		return err
	}
	switch field {
	case 4:
		return floatField(&st.InputSampleRate, rest)
	case 5:
		return intField(&st.DecimationFactor, rest)
	}
	return nil
}

func (p *parser) gainField(field int, rest string) error {
	if field == 3 {
		seq, err := atoi(rest)
		if err != nil {
			return err
		}
		if seq == 0 {
			p.overall = true
			p.cur = nil
			return nil
		}
		p.overall = false
		p.cur = p.stage(seq)
		if p.cur.Type == "" {
			p.cur.Type = TypeGain
		}
		return nil
	}
	if p.overall {
		switch field {
		case 4:
			return floatField(&p.r.Sensitivity, rest)
		case 5:
			return floatField(&p.r.Frequency, rest)
		}
		return nil
	}
	st, err := p.need()
	if err != nil {
		return err
	}
	switch field {
	case 4:
		return floatField(&st.Gain, rest)
	case 5:
		return floatField(&st.GainFrequency, rest)
	}
	return nil
}

func (p *parser) firField(field int, rest string) error {
	if field == 3 {
		seq, err := atoi(rest)
		if err != nil {
			return err
		}
		p.cur = p.stage(seq)
		p.cur.Type = TypeFIR
		return nil
	}
	st, err := p.need()
	if err != nil {
		return err
	}
	switch field {
	case 6, 7:
		return p.unitsField(field == 6, rest)
	case 8:
		return intField(&st.Numerators, rest)
	}
	return nil
}

func (p *parser) unitsField(input bool, rest string) error {
	code, description := splitUnits(colonValue(rest))
	if input {
		p.cur.InputUnits, p.cur.InputUnitsDescription = code, description
	} else {
		p.cur.OutputUnits, p.cur.OutputUnitsDescription = code, description
	}
	return nil
}

func floatField(dst *float64, rest string) error {
	v, err := strconv.ParseFloat(colonValue(rest), 64)
	if err != nil {
		return fmt.Errorf("bad numeric value %q: %w", colonValue(rest), err)
	}
	*dst = v
	return nil
}

func intField(dst *int, rest string) error {
	v, err := strconv.Atoi(colonValue(rest))
	if err != nil {
		return fmt.Errorf("bad integer value %q: %w", colonValue(rest), err)
	}
	*dst = v
	return nil
}

func (p *parser) finish() (*Response, error) {
	if !p.sawField {
		return nil, fmt.Errorf("not a RESP document: no blockette fields found")
	}
	if len(p.r.Stages) == 0 {
		return nil, fmt.Errorf("RESP document contains no response stages")
	}
	p.r.updateUnits()
	return p.r, nil
}

// updateUnits derives the end-to-end units from the stage chain: input
// from the first stage declaring units, output from the last.
func (r *Response) updateUnits() {
	r.InputUnits, r.InputUnitsDescription = "", ""
	r.OutputUnits, r.OutputUnitsDescription = "", ""
	for _, st := range r.Stages {
		if st.InputUnits != "" {
			r.InputUnits, r.InputUnitsDescription = st.InputUnits, st.InputUnitsDescription
			break
		}
	}
	for i := len(r.Stages) - 1; i >= 0; i-- {
		if st := r.Stages[i]; st.OutputUnits != "" {
			r.OutputUnits, r.OutputUnitsDescription = st.OutputUnits, st.OutputUnitsDescription
			break
		}
	}
}

// colonValue returns the trimmed text after the field label's colon, or
// the whole trimmed text for label-less rows.
func colonValue(rest string) string {
	if i := strings.Index(rest, ":"); i >= 0 {
		return strings.TrimSpace(rest[i+1:])
	}
	return strings.TrimSpace(rest)
}

func firstField(v string) string {
	if fields := strings.Fields(v); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// splitUnits splits "M/S - Velocity in Meters Per Second" into the unit
// code and its description.
func splitUnits(v string) (code, description string) {
	if i := strings.Index(v, " - "); i >= 0 {
		return strings.TrimSpace(v[:i]), strings.TrimSpace(v[i+3:])
	}
	return firstField(v), ""
}

func atoi(rest string) (int, error) {
	v, err := strconv.Atoi(colonValue(rest))
	if err != nil {
		return 0, fmt.Errorf("bad stage sequence number %q: %w", colonValue(rest), err)
	}
	return v, nil
}

// parseComplexRow parses one pole or zero row: index, real, imaginary,
// then error columns that are ignored.
func parseComplexRow(rest string) (complex128, error) {
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		return 0, fmt.Errorf("malformed complex value row %q", rest)
	}
	re, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("bad real part %q: %w", fields[1], err)
	}
	im, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, fmt.Errorf("bad imaginary part %q: %w", fields[2], err)
	}
	return complex(re, im), nil
}
