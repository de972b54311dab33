package assets

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/johnqtcg/pr2md/internal/logging"
)

// ErrInvalidImage indicates downloaded bytes are not an image.
var ErrInvalidImage = errors.New("invalid image")

// Format is a recognized image class.
type Format string

const (
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatICO     Format = "ico"
	FormatSVG     Format = "svg"
	FormatUnknown Format = "unknown"
)

// Validation is the outcome of sniffing one buffer.
type Validation struct {
	Valid  bool
	Format Format
	Reason string
}

type signature struct {
	magic  []byte
	format Format
}

// Checked in order. The XML prolog must stay last.
var signatures = []signature{
	{magic: []byte{0x89, 0x50, 0x4E, 0x47}, format: FormatPNG},
	{magic: []byte{0xFF, 0xD8, 0xFF}, format: FormatJPEG},
	{magic: []byte{0x47, 0x49, 0x46, 0x38}, format: FormatGIF},
	// RIFF container header only; the WEBP chunk tag is not checked.
	{magic: []byte{0x52, 0x49, 0x46, 0x46}, format: FormatWebP},
	{magic: []byte{0x42, 0x4D}, format: FormatBMP},
	{magic: []byte{0x00, 0x00, 0x01, 0x00}, format: FormatICO},
	{magic: []byte("<?xml"), format: FormatSVG},
}

var htmlPrefixes = [][]byte{
	[]byte("<!"),
	[]byte("<html"),
	[]byte("<HTML"),
}

var svgPrefix = []byte("<svg")

var extensions = map[Format]string{
	FormatPNG:  ".png",
	FormatJPEG: ".jpg",
	FormatGIF:  ".gif",
	FormatWebP: ".webp",
	FormatBMP:  ".bmp",
	FormatICO:  ".ico",
	FormatSVG:  ".svg",
}

// Extension returns the file extension for a recognized format, or "" for unknown.
func (f Format) Extension() string {
	return extensions[f]
}

// Validator classifies downloaded bytes by their leading magic bytes.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a Validator. A nil logger discards diagnostics.
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{logger: logging.OrDiscard(logger)}
}

// Validate sniffs data. Unrecognized non-HTML content is accepted as FormatUnknown.
func (v *Validator) Validate(data []byte, sourceURL string) Validation {
	if len(data) < 4 {
		return Validation{Reason: "too small"}
	}
	for _, prefix := range htmlPrefixes {
		if bytes.HasPrefix(data, prefix) {
			return Validation{Reason: "HTML error page"}
		}
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.magic) {
			return Validation{Valid: true, Format: sig.format}
		}
	}
	if bytes.HasPrefix(data, svgPrefix) {
		return Validation{Valid: true, Format: FormatSVG}
	}

	v.logger.Debug("unrecognized image signature, keeping download",
		"url", sourceURL, "leading_bytes", leadingHex(data))
	return Validation{Valid: true, Format: FormatUnknown}
}

func leadingHex(data []byte) string {
	return fmt.Sprintf("% x", data[:min(len(data), 8)])
}
