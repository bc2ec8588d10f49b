package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedCodeValidate(t *testing.T) {
	gate := NewFixedCode("1212")

	assert.True(t, gate.Validate("1212"))
	assert.False(t, gate.Validate("0000"))
	assert.False(t, gate.Validate("12122"))
	assert.False(t, gate.Validate(" 1212"))
	assert.False(t, gate.Validate(""))
}

func TestFixedCodeEmptyConfigRejectsEverything(t *testing.T) {
	gate := NewFixedCode("")

	assert.False(t, gate.Validate(""))
	assert.False(t, gate.Validate("anything"))
}
