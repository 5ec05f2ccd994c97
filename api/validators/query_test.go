package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	t.Run("absent key returns the default", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/barbers", nil)
		value, err := ParseQueryInt(r, "limit", 25, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, 25, value)
	})

	t.Run("in-range value parses", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/barbers?limit=40", nil)
		value, err := ParseQueryInt(r, "limit", 25, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, 40, value)
	})

	t.Run("non-numeric value is a validation error", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/barbers?limit=soon", nil)
		_, err := ParseQueryInt(r, "limit", 25, 1, 100)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	})

	t.Run("out-of-range value is a validation error", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/barbers?limit=0", nil)
		_, err := ParseQueryInt(r, "limit", 25, 1, 100)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	})
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Fade", SanitizeString("  Fade  ", 10))
	assert.Equal(t, "Fad", SanitizeString("Fade", 3))
	assert.Equal(t, "", SanitizeString("   ", 10))
}
