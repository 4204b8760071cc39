package clan

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestValidateIcon(t *testing.T) {
	assert.NoError(t, ValidateIcon(encodePNG(t, 64, 64)))
	assert.NoError(t, ValidateIcon(encodePNG(t, 256, 256)))

	assert.ErrorIs(t, ValidateIcon(encodePNG(t, 64, 32)), ErrIconNotSquare)
	assert.ErrorIs(t, ValidateIcon(encodePNG(t, 512, 512)), ErrIconTooLarge)

	assert.ErrorIs(t, ValidateIcon("not base64!!"), ErrIconNotPNG)
	notPNG := base64.StdEncoding.EncodeToString([]byte("plain text"))
	assert.ErrorIs(t, ValidateIcon(notPNG), ErrIconNotPNG)
}
