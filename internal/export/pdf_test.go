package export

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SharedBoard/internal/raster"
	"SharedBoard/internal/stroke"
)

func board(t *testing.T) image.Image {
	t.Helper()
	c := raster.NewCanvas(80, 60, stroke.White)
	require.NoError(t, raster.Paint(c, stroke.Circle, stroke.Red, 3, 10, 10, 70, 50))
	return c.Image()
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, board(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "/Image")
}

func TestPDFRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, PDF(&buf, image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestPNG(t *testing.T) {
	img := board(t)
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, img))

	got, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())
	assert.Equal(t, stroke.FromColor(img.At(40, 10)), stroke.FromColor(got.At(40, 10)))
}
