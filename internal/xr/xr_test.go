package xr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModality(t *testing.T) {
	for _, m := range []Modality{ModalityTrackedPointer, ModalityGaze, ModalityScreen} {
		got, ok := ParseModality(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseModality("joystick")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Modality(42).String())
}
