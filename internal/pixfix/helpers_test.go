package pixfix

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mascotmascot1/go-pixfix/internal/config"
)

// grayFromRows строит изображение из строк яркостей rows[y][x].
func grayFromRows(rows [][]uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// rowsOf возвращает яркости изображения в виде строк.
func rowsOf(img *image.Gray) [][]uint8 {
	b := img.Bounds()
	rows := make([][]uint8, b.Dy())
	for y := range rows {
		rows[y] = make([]uint8, b.Dx())
		for x := range rows[y] {
			rows[y][x] = img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	return rows
}

// noisyGray строит изображение, в котором примерно каждый пятый пиксель дефектный.
func noisyGray(w, h int, seed uint64) *image.Gray {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		switch rng.IntN(10) {
		case 0:
			img.Pix[i] = 0
		case 1:
			img.Pix[i] = 255
		default:
			img.Pix[i] = uint8(2 + rng.IntN(252))
		}
	}
	return img
}

func newTestRunner(t *testing.T, mutate func(*config.AlgorithmConfig)) *Runner {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg.Algorithm)
	}
	r, err := NewRunner(cfg, zerolog.Nop())
	require.NoError(t, err)
	return r
}
