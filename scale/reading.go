// Package scale decodes the Health o meter line protocol into weight
// readings. The device emits one reading per line, fields separated by
// ESC (0x1B), each field prefixed with a single tag letter.
package scale

import "time"

// Unit is a weight unit of measure, encoded as a UCUM code
// (http://unitsofmeasure.org). The device only ever signals kilograms
// or pounds; gram exists for protocol completeness.
type Unit string

const (
	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Pound    Unit = "[lb_av]" // avoirdupois pound, the US pound
)

// Reading is one complete, validated measurement from the scale.
// It is immutable once constructed; Parse either returns a fully
// populated Reading or none at all.
type Reading struct {
	// EventTime is captured at parse completion. The device protocol
	// carries no timestamp of its own.
	EventTime time.Time `json:"event_time"`
	PatientID string    `json:"patient_id,omitempty"`
	Weight    float64   `json:"weight"`
	Height    float64   `json:"height"`
	BMI       float64   `json:"bmi"`
	Units     Unit      `json:"units"`
}
