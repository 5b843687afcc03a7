// Package barcode issues EAN-13 order barcodes and renders them as PNG files
// under the static directory.
package barcode

import (
	"crypto/rand"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/ean"
)

const (
	renderWidth  = 260
	renderHeight = 100
)

// NewValue generates a random 13-digit EAN-13 value (12 random digits plus
// the standard check digit).
func NewValue() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate barcode digits: %w", err)
	}
	digits := make([]byte, 12)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}

	code, err := ean.Encode(string(digits))
	if err != nil {
		return "", fmt.Errorf("encode barcode: %w", err)
	}
	return code.Content(), nil
}

// Render writes the EAN-13 image for value into dir and returns the file name.
func Render(value, dir string) (string, error) {
	code, err := ean.Encode(value)
	if err != nil {
		return "", fmt.Errorf("encode barcode: %w", err)
	}

	scaled, err := bc.Scale(code, renderWidth, renderHeight)
	if err != nil {
		return "", fmt.Errorf("scale barcode: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create barcode dir: %w", err)
	}

	name := fmt.Sprintf("order_%s.png", value)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create barcode file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, scaled); err != nil {
		return "", fmt.Errorf("write barcode png: %w", err)
	}
	return name, nil
}
