package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"wabridge/internal/domain"

	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// QRRenderer turns a pairing challenge into its presentable forms: a PNG
// data URL for the HTTP surface and an optional half-block render on the
// terminal for operators watching the process logs. Rendering failures
// degrade to the raw code, never to an error.
type QRRenderer struct {
	printTerminal bool
	terminalOut   io.Writer
}

// NewQRRenderer creates a new QR renderer
func NewQRRenderer(printTerminal bool) *QRRenderer {
	return &QRRenderer{
		printTerminal: printTerminal,
		terminalOut:   os.Stdout,
	}
}

// Render produces the rendered forms of a pairing challenge
func (r *QRRenderer) Render(code string) domain.RenderedQR {
	if r.printTerminal {
		fmt.Fprintln(r.terminalOut, "\n=== SCAN QR CODE WITH WHATSAPP ===")
		qrterminal.GenerateHalfBlock(code, qrterminal.L, r.terminalOut)
		fmt.Fprintln(r.terminalOut, "==================================")
	}

	rendered := domain.RenderedQR{Code: code}

	image, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to render QR code image, serving raw challenge only")
		return rendered
	}

	rendered.ImageDataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	return rendered
}
