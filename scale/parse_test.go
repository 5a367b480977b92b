package scale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullPacket(t *testing.T) {
	// A complete packet as captured from a Health o meter 1100L.
	line := "6R\x1bI0000000000\x1bW123.4\x1bH0.0\x1bB0.0\x1bT0.0\x1bNc\x1bE"

	r, err := Parse(line)
	require.NoError(t, err)

	assert.Equal(t, "0000000000", r.PatientID)
	assert.Equal(t, 123.4, r.Weight)
	assert.Equal(t, 0.0, r.Height)
	assert.Equal(t, 0.0, r.BMI)
	assert.Equal(t, Pound, r.Units)
}

func TestParseKilograms(t *testing.T) {
	r, err := Parse("W70.2\x1bNm")
	require.NoError(t, err)
	assert.Equal(t, 70.2, r.Weight)
	assert.Equal(t, Kilogram, r.Units)
	assert.Empty(t, r.PatientID)
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Unit
	}{
		{"metric code", "W1\x1bNm", Kilogram},
		{"default code", "W1\x1bNc", Pound},
		{"unknown code", "W1\x1bNx", Pound},
		{"empty code", "W1\x1bN", Pound},
		{"absent field", "W1", Pound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Units)
		})
	}
}

func TestParseMissingFieldsDefaultToZero(t *testing.T) {
	r, err := Parse("I42\x1bNm")
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Weight)
	assert.Equal(t, 0.0, r.Height)
	assert.Equal(t, 0.0, r.BMI)
	assert.Equal(t, "42", r.PatientID)
}

func TestParseEmptyWeightValue(t *testing.T) {
	r, err := Parse("W\x1bNc")
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Weight)
}

func TestParseBadNumbers(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{"weight", "Wabc", "weight"},
		{"height", "W1\x1bHtall", "height"},
		{"bmi", "W1\x1bBn/a", "bmi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.field, perr.Field)
		})
	}
}

func TestParseEmptyLine(t *testing.T) {
	_, err := Parse("")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseDuplicateTagFirstWins(t *testing.T) {
	r, err := Parse("W10.5\x1bW99.9\x1bNm\x1bNc")
	require.NoError(t, err)
	assert.Equal(t, 10.5, r.Weight)
	assert.Equal(t, Kilogram, r.Units)
}

func TestParseStampsEventTime(t *testing.T) {
	before := time.Now()
	r, err := Parse("W1.0")
	require.NoError(t, err)
	assert.False(t, r.EventTime.Before(before))
	assert.False(t, r.EventTime.After(time.Now()))
}
