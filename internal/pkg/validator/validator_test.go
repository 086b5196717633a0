package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	type sample struct {
		Name    string `validate:"required"`
		Workers int    `validate:"min=1"`
	}

	t.Run("valid struct passes", func(t *testing.T) {
		assert.NoError(t, Validate(sample{Name: "bridgewatch", Workers: 4}))
	})

	t.Run("failures wrap the sentinel", func(t *testing.T) {
		err := Validate(sample{})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("every failing field is reported", func(t *testing.T) {
		err := Validate(sample{Workers: 0})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Name")
		assert.Contains(t, err.Error(), "Workers")
	})
}
