package pdgdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFallsBackToFallbackTable(t *testing.T) {
	assert.Equal(t, "e-", Name(11))
	assert.Equal(t, "gamma", Name(22))
}

func TestNameFallsBackToDecimalString(t *testing.T) {
	assert.Equal(t, "999999", Name(999999))
}

func TestIsValidPDGIDPermissive(t *testing.T) {
	assert.True(t, IsValidPDGID(11))
	assert.False(t, IsValidPDGID(0))
}

func TestMassGeVUnknown(t *testing.T) {
	_, ok := MassGeV(11)
	assert.False(t, ok)
}
