package mapper

import (
	"testing"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapValue(t *testing.T) {
	t.Parallel()

	t.Run("value field should be returned", func(t *testing.T) {
		value, err := MapValue([]byte(`{"value": 42}`))
		require.NoError(t, err)
		assert.Equal(t, float64(42), value)
	})
	t.Run("fractional values are kept", func(t *testing.T) {
		value, err := MapValue([]byte(`{"value": 12.5, "other": "x"}`))
		require.NoError(t, err)
		assert.Equal(t, 12.5, value)
	})
	t.Run("zero is a valid value", func(t *testing.T) {
		value, err := MapValue([]byte(`{"value": 0}`))
		require.NoError(t, err)
		assert.Equal(t, float64(0), value)
	})

	shapeErrors := map[string]string{
		"empty object":   `{}`,
		"error envelope": `{"error": true, "error_message": "Unauthorized"}`,
		"array":          `[{"value": 1}]`,
		"null value":     `{"value": null}`,
		"string value":   `{"value": "12"}`,
		"not json":       `<html>maintenance</html>`,
		"empty body":     ``,
		"truncated body": `{"value": 4`,
		"trailing junk":  `{"value": 4}}`,
	}
	for name, body := range shapeErrors {
		body := body
		t.Run(name+" should return a shape error", func(t *testing.T) {
			value, err := MapValue([]byte(body))
			assert.Equal(t, float64(0), value)
			assert.ErrorIs(t, err, client.ErrShape)
		})
	}
}
