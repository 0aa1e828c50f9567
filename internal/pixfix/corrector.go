package pixfix

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Polarity описывает тип дефекта пикселя.
type Polarity int

const (
	// None - пиксель не дефектный.
	None Polarity = iota
	// Dark - пиксель слишком темный (<= black threshold).
	Dark
	// Bright - пиксель слишком яркий (>= white threshold).
	Bright
)

func (p Polarity) String() string {
	switch p {
	case Dark:
		return "dark"
	case Bright:
		return "bright"
	default:
		return "none"
	}
}

// Rounding определяет, как среднее значение соседей переводится в яркость пикселя.
type Rounding int

const (
	// RoundHalfAway округляет к ближайшему целому (половина - от нуля).
	RoundHalfAway Rounding = iota
	// Truncate отбрасывает дробную часть. Нужен для сверки со старыми эталонами,
	// построенными с усечением.
	Truncate
)

func (r Rounding) String() string {
	if r == Truncate {
		return "truncate"
	}
	return "round"
}

// ParseRounding разбирает режим округления из конфигурации.
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "round":
		return RoundHalfAway, nil
	case "truncate":
		return Truncate, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "unknown rounding mode %q (want \"round\" or \"truncate\")", s)
}

func (r Rounding) apply(v float64) uint8 {
	if r == Truncate {
		v = math.Trunc(v)
	} else {
		v = math.Round(v)
	}
	return uint8(math.Min(math.Max(v, 0), 255))
}

// Result - итог обработки одного пикселя.
type Result struct {
	X, Y int
	// Original - яркость до коррекции.
	Original uint8
	// Value - яркость после коррекции; равна Original, если коррекции не было.
	Value uint8
	// Corrected сообщает, был ли пиксель перезаписан.
	Corrected bool
	Polarity  Polarity
}

// Corrector решает, нужно ли исправлять пиксель, и исправляет его.
type Corrector struct {
	thresholds Thresholds
	kernelSize int
	rounding   Rounding
	logger     zerolog.Logger
}

// NewCorrector создает Corrector, проверяя пороги и размер ядра заранее,
// чтобы проход не начинался с некорректными параметрами.
func NewCorrector(th Thresholds, kernelSize int, rounding Rounding, logger zerolog.Logger) (*Corrector, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if kernelSize < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "kernel size must be a non-negative integer, got %d", kernelSize)
	}
	return &Corrector{
		thresholds: th,
		kernelSize: kernelSize,
		rounding:   rounding,
		logger:     logger,
	}, nil
}

// Correct проверяет пиксель (x, y) в src и, если он дефектный, записывает
// в dst среднее его допустимых соседей из src.
//
// src и dst могут совпадать: так работает режим общего буфера, в котором
// соседи могут быть уже исправлены к моменту чтения.
func (c *Corrector) Correct(src, dst *image.Gray, x, y int) (Result, error) {
	pixel := src.GrayAt(x, y).Y
	res := Result{X: x, Y: y, Original: pixel, Value: pixel}

	switch {
	case pixel <= c.thresholds.Black:
		res.Polarity = Dark
	case pixel >= c.thresholds.White:
		res.Polarity = Bright
	default:
		return res, nil
	}

	avg, err := Average(src, x, y, c.kernelSize, c.thresholds)
	if err != nil {
		return res, err
	}
	res.Value = c.rounding.apply(avg)
	res.Corrected = true
	dst.SetGray(x, y, color.Gray{Y: res.Value})

	c.logger.Info().
		Int("x", x).
		Int("y", y).
		Uint8("codes", res.Original).
		Uint8("correction", res.Value).
		Msgf("%s pixel found", res.Polarity)
	return res, nil
}
