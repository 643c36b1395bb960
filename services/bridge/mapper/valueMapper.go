package mapper

import (
	"fmt"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/client"
	"github.com/tidwall/gjson"
)

const valueField = "value"

// MapValue extracts the scalar of a simple-stat payload shaped as {"value": N}. Any other shape returns an error
// wrapping client.ErrShape.
func MapValue(body []byte) (float64, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("%w: body is not valid JSON", client.ErrShape)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return 0, fmt.Errorf("%w: body is not a JSON object", client.ErrShape)
	}

	value := parsed.Get(valueField)
	if !value.Exists() {
		return 0, fmt.Errorf("%w: no %q field", client.ErrShape, valueField)
	}
	if value.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %q field is %s, not a number", client.ErrShape, valueField, value.Type)
	}

	return value.Float(), nil
}
