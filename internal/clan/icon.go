package clan

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
)

const (
	maxIconBytes = 64 * 1024
	maxIconEdge  = 256
)

var (
	ErrIconNotPNG    = errors.New("clan icon must be a PNG image")
	ErrIconNotSquare = errors.New("clan icon must be square")
	ErrIconTooLarge  = errors.New("clan icon is too large")
)

// ValidateIcon checks that icon is a base64-encoded square PNG within the
// size limits. Only the header is decoded; pixel data is never touched.
func ValidateIcon(icon string) error {
	raw, err := base64.StdEncoding.DecodeString(icon)
	if err != nil {
		return ErrIconNotPNG
	}
	if len(raw) > maxIconBytes {
		return ErrIconTooLarge
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return ErrIconNotPNG
	}
	if cfg.Width != cfg.Height {
		return ErrIconNotSquare
	}
	if cfg.Width > maxIconEdge {
		return ErrIconTooLarge
	}
	return nil
}
