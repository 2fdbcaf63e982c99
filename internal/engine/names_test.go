package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDonorName(t *testing.T) {
	assert.Equal(t, "Maya Lindo", NormalizeDonorName("  maya   lindo "))
	assert.Equal(t, "Asha Patel", NormalizeDonorName("Asha Patel"))
	assert.Equal(t, "", NormalizeDonorName("   "))
}
