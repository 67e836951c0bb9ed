package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRRendererProducesDataURL(t *testing.T) {
	renderer := NewQRRenderer(false)

	rendered := renderer.Render("2@abcdef123456,challenge-payload")

	assert.Equal(t, "2@abcdef123456,challenge-payload", rendered.Code)
	require.NotEmpty(t, rendered.ImageDataURL)
	assert.True(t, strings.HasPrefix(rendered.ImageDataURL, "data:image/png;base64,"))
}

func TestQRRendererDegradesOnEncodeFailure(t *testing.T) {
	renderer := NewQRRenderer(false)

	// A payload beyond the symbol capacity makes the PNG encoder fail; the
	// raw code must still come through.
	rendered := renderer.Render(strings.Repeat("x", 5000))

	assert.NotEmpty(t, rendered.Code)
	assert.Empty(t, rendered.ImageDataURL)
}

func TestQRRendererTerminalOutput(t *testing.T) {
	var out bytes.Buffer
	renderer := NewQRRenderer(true)
	renderer.terminalOut = &out

	renderer.Render("2@abcdef123456,challenge-payload")

	assert.Contains(t, out.String(), "SCAN QR CODE")
}
