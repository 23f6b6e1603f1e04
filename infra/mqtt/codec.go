package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/kilianp07/tempnode/core/sensor"
)

// Payload format names accepted in Config.Format.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Codec serializes a reading into a response payload.
type Codec interface {
	Encode(r sensor.Reading) ([]byte, error)
}

// NewCodec returns the codec for the given format name.
func NewCodec(format string) (Codec, error) {
	switch format {
	case FormatCSV:
		return CSVCodec{}, nil
	case FormatJSON:
		return JSONCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown payload format %q", format)
	}
}

// CSVCodec produces the original firmware payload:
// "<remaining>,<temperature>,<uptime_ms>" with the temperature at two
// decimals.
type CSVCodec struct{}

// Encode implements Codec.
func (CSVCodec) Encode(r sensor.Reading) ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%.2f,%d", r.Remaining, r.Temperature, r.Uptime.Milliseconds())), nil
}

// JSONCodec produces a JSON object carrying the same fields.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(r sensor.Reading) ([]byte, error) {
	return json.Marshal(struct {
		Remaining   int     `json:"remaining"`
		Temperature float64 `json:"temperature"`
		UptimeMS    int64   `json:"uptime_ms"`
	}{
		Remaining:   r.Remaining,
		Temperature: r.Temperature,
		UptimeMS:    r.Uptime.Milliseconds(),
	})
}
