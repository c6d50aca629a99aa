package bids

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Acquisition is a typed view of the sidecar fields most tools read. Fields
// absent from the sidecar stay at their zero value; unknown keys are ignored.
type Acquisition struct {
	TaskName               string    `mapstructure:"TaskName"`
	RepetitionTime         float64   `mapstructure:"RepetitionTime"`
	EchoTime               float64   `mapstructure:"EchoTime"`
	FlipAngle              float64   `mapstructure:"FlipAngle"`
	Manufacturer           string    `mapstructure:"Manufacturer"`
	MagneticFieldStrength  float64   `mapstructure:"MagneticFieldStrength"`
	PhaseEncodingDirection string    `mapstructure:"PhaseEncodingDirection"`
	SliceTiming            []float64 `mapstructure:"SliceTiming"`
}

// DecodeMetadata decodes a sidecar mapping into out (a pointer to a struct
// tagged with `mapstructure`). Scalars are converted weakly, so "2.0" decodes
// into a float64 field.
func DecodeMetadata(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	return nil
}

// DecodeAcquisition is DecodeMetadata into an [Acquisition].
func DecodeAcquisition(m map[string]any) (Acquisition, error) {
	var a Acquisition
	err := DecodeMetadata(m, &a)
	return a, err
}
