package pixfix

import (
	"image"

	"github.com/pkg/errors"
)

// Average вычисляет среднюю яркость допустимых соседей пикселя (x, y).
//
// Принимает:
//
//	img *image.Gray: изображение, из которого читаются соседи (снимок до коррекции).
//	x, y int: координаты центрального пикселя.
//	kernelSize int: радиус окрестности по Чебышёву.
//	th Thresholds: пороги, определяющие допустимость соседа.
//
// Возвращает:
//
//	float64: среднее арифметическое допустимых соседей или 0, если таких нет.
//	error: ErrInvalidArgument при отрицательном kernelSize.
//
// Сосед допустим, если он лежит в границах изображения и сам не является дефектным.
// Центральный пиксель в усреднение не входит.
func Average(img *image.Gray, x, y, kernelSize int, th Thresholds) (float64, error) {
	if kernelSize < 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "kernel size must be a non-negative integer, got %d", kernelSize)
	}

	bounds := img.Bounds()
	var sum, count int
	for ny := y - kernelSize; ny <= y+kernelSize; ny++ {
		for nx := x - kernelSize; nx <= x+kernelSize; nx++ {
			if nx == x && ny == y {
				continue
			}
			if !(image.Point{X: nx, Y: ny}).In(bounds) {
				continue
			}
			v := img.GrayAt(nx, ny).Y
			if th.IsValid(v) {
				sum += int(v)
				count++
			}
		}
	}

	if count == 0 {
		// Вся окрестность дефектна: заполняем нулем, это не ошибка.
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}
