package scale

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fieldSep delimits fields within one packet line.
const fieldSep = "\x1b"

// ParseError reports a packet that could not be decoded. The reading
// is discarded; the read loop logs and carries on.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s field %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes one packet line into a Reading.
//
// Fields are scanned in order and the first field carrying a given tag
// wins; the device is not documented to send duplicates, so nothing is
// inferred from later ones. W/H/B default to "0" and the units code to
// "c" when absent, matching the device's idle output. A Reading always
// carries a fresh wall-clock EventTime.
//
// Example packet: "6R\x1bI0000000000\x1bW123.4\x1bH0.0\x1bB0.0\x1bT0.0\x1bNc\x1bE"
func Parse(line string) (Reading, error) {
	if line == "" {
		return Reading{}, &ParseError{Field: "packet", Err: fmt.Errorf("empty packet")}
	}
	fields := strings.Split(line, fieldSep)

	patientID, _ := firstField(fields, 'I')

	weight, err := floatField(fields, 'W', "weight")
	if err != nil {
		return Reading{}, err
	}
	height, err := floatField(fields, 'H', "height")
	if err != nil {
		return Reading{}, err
	}
	bmi, err := floatField(fields, 'B', "bmi")
	if err != nil {
		return Reading{}, err
	}

	unitsCode, ok := firstField(fields, 'N')
	if !ok {
		unitsCode = "c"
	}
	units := Pound
	if unitsCode == "m" {
		units = Kilogram
	}

	return Reading{
		EventTime: time.Now(),
		PatientID: patientID,
		Weight:    weight,
		Height:    height,
		BMI:       bmi,
		Units:     units,
	}, nil
}

// firstField returns the value of the first field tagged with tag.
func firstField(fields []string, tag byte) (string, bool) {
	for _, f := range fields {
		if len(f) > 0 && f[0] == tag {
			return f[1:], true
		}
	}
	return "", false
}

func floatField(fields []string, tag byte, name string) (float64, error) {
	raw, ok := firstField(fields, tag)
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ParseError{Field: name, Value: raw, Err: err}
	}
	return v, nil
}
