package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromptInput(t *testing.T) {
	in := NewPromptInput(nil)
	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
}

func TestPromptInput_ValueRoundTrip(t *testing.T) {
	in := NewPromptInput(nil)

	in.SetValue("what is scaled dot-product attention?")
	assert.Equal(t, "what is scaled dot-product attention?", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestPromptInput_FocusBlur(t *testing.T) {
	in := NewPromptInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestPromptInput_SetWidth(t *testing.T) {
	in := NewPromptInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())

	// Narrow terminals never shrink the field below a usable size.
	in.SetWidth(10)
	assert.Equal(t, 10, in.Width())
}
