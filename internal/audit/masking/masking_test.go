package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ja****@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "****@example.com", MaskEmail("jo@example.com"))
	assert.Equal(t, "****", MaskEmail("abc"))
	assert.Equal(t, "", MaskEmail("  "))
}

func TestMaskFields(t *testing.T) {
	out := MaskFields(map[string]any{
		"userEmail": "jane@example.com",
		"amount":    82.5,
		" ":         "dropped",
	}, "userEmail")

	assert.Equal(t, map[string]any{
		"userEmail": "ja****@example.com",
		"amount":    82.5,
	}, out)
	assert.Nil(t, MaskFields(nil, "userEmail"))
}
