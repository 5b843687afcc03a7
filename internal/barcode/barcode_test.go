package barcode

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValue(t *testing.T) {
	value, err := NewValue()
	require.NoError(t, err)
	require.Len(t, value, 13)
	for _, r := range value {
		assert.True(t, unicode.IsDigit(r), "barcode must be all digits, got %q", value)
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()

	value, err := NewValue()
	require.NoError(t, err)

	name, err := Render(value, dir)
	require.NoError(t, err)
	assert.Equal(t, "order_"+value+".png", name)

	f, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 260, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestRender_InvalidValue(t *testing.T) {
	_, err := Render("not-a-barcode", t.TempDir())
	assert.Error(t, err)
}
