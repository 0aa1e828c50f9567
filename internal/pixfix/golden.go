package pixfix

import (
	"image"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Mismatch - пиксель, яркость которого отличается от эталона.
type Mismatch struct {
	X, Y      int
	Corrected uint8
	Golden    uint8
}

// MismatchReport - все расхождения в построчном порядке. Пустой отчет означает
// полное совпадение.
type MismatchReport []Mismatch

// Compare сравнивает исправленное изображение с эталонным попиксельно.
//
// Изображения должны иметь одинаковые размеры, иначе возвращается ErrDimensionMismatch
// и отчет не строится. Сравнение не прерывается на первом расхождении.
// Координаты в отчете отсчитываются от левого верхнего угла каждого изображения.
func Compare(corrected, golden *image.Gray) (MismatchReport, error) {
	cb, gb := corrected.Bounds(), golden.Bounds()
	if cb.Dx() != gb.Dx() || cb.Dy() != gb.Dy() {
		return nil, errors.Wrapf(ErrDimensionMismatch,
			"corrected image is %dx%d, golden image is %dx%d", cb.Dx(), cb.Dy(), gb.Dx(), gb.Dy())
	}

	report := MismatchReport{}
	for y := 0; y < cb.Dy(); y++ {
		for x := 0; x < cb.Dx(); x++ {
			c := corrected.GrayAt(cb.Min.X+x, cb.Min.Y+y).Y
			g := golden.GrayAt(gb.Min.X+x, gb.Min.Y+y).Y
			if c != g {
				report = append(report, Mismatch{X: x, Y: y, Corrected: c, Golden: g})
			}
		}
	}
	return report, nil
}

// Log выводит по строке на каждое расхождение и завершающую строку.
func (r MismatchReport) Log(logger zerolog.Logger) {
	for _, m := range r {
		logger.Warn().
			Int("x", m.X).
			Int("y", m.Y).
			Uint8("corrected", m.Corrected).
			Uint8("golden", m.Golden).
			Msg("pixel does not match with golden")
	}
	logger.Info().Int("mismatches", len(r)).Msg("done checking golden image!")
}
