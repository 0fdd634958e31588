package infer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsFinalToken(t *testing.T) {
	enc := Encoding{
		IDs:           []int64{101, 1, 2, 3, 4, 102},
		AttentionMask: []int64{1, 1, 1, 1, 1, 1},
		TypeIDs:       []int64{0, 0, 0, 0, 0, 0},
	}
	got := Truncate(enc, 4)
	assert.Equal(t, []int64{101, 1, 2, 102}, got.IDs)
	assert.Equal(t, []int64{1, 1, 1, 1}, got.AttentionMask)
	assert.Equal(t, []int64{0, 0, 0, 0}, got.TypeIDs)

	assert.Equal(t, enc, Truncate(enc, 10))
	assert.Equal(t, enc, Truncate(enc, 1))
}

func TestSoftmaxAndArgmax(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3})
	require.Len(t, probs, 3)
	var sum float32
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1, sum, 1e-5)
	assert.InDelta(t, 0.6652, probs[2], 1e-3)
	assert.Equal(t, 2, Argmax(probs))

	assert.Nil(t, Softmax(nil))
	assert.Equal(t, -1, Argmax(nil))
	assert.Equal(t, 0, Argmax([]float32{0.5, 0.5}))
}

func TestExpectedIndexAndApparentAge(t *testing.T) {
	probs := make([]float32, 101)
	probs[30] = 0.5
	probs[41] = 0.5
	assert.InDelta(t, 35.5, ExpectedIndex(probs), 1e-6)
	assert.Equal(t, "36", ApparentAge(probs))
	assert.Equal(t, "0", ApparentAge(nil))
}

func TestIsDistribution(t *testing.T) {
	assert.True(t, isDistribution([]float32{0.2, 0.3, 0.5}))
	assert.False(t, isDistribution([]float32{2, -1}))
	assert.False(t, isDistribution([]float32{3, 4}))
}

func TestPickLabel(t *testing.T) {
	pred, err := pickLabel([]float32{-1, 0.5, 4}, []string{"Left", "Center", "Right"})
	require.NoError(t, err)
	assert.Equal(t, "Right", pred.Label)
	assert.Greater(t, pred.Score, float32(0.9))

	_, err = pickLabel([]float32{1, 2}, []string{"Left", "Center", "Right"})
	assert.Error(t, err)
}

func TestDominantLabel(t *testing.T) {
	got, err := DominantLabel([]float32{0.1, 0.1, 0.6, 0.1, 0.05, 0.05}, RaceLabels)
	require.NoError(t, err)
	assert.Equal(t, "black", got)

	got, err = DominantLabel([]float32{0.7, 0.3}, GenderLabels)
	require.NoError(t, err)
	assert.Equal(t, "Woman", got)

	_, err = DominantLabel([]float32{1}, GenderLabels)
	assert.Error(t, err)
}

func TestImageTensorLayout(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	pixels := ImageTensor(img, 4)
	require.Len(t, pixels, 4*4*3)
	for i := 0; i < len(pixels); i += 3 {
		assert.InDelta(t, 1.0, pixels[i], 1e-2)
		assert.InDelta(t, 0.0, pixels[i+1], 1e-2)
		assert.InDelta(t, 0.0, pixels[i+2], 1e-2)
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 3, 2))))
	require.NoError(t, f.Close())

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = LoadImage(bad)
	assert.Error(t, err)

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
