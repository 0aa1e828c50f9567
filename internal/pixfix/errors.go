package pixfix

import "github.com/pkg/errors"

// Ошибки ядра. Конкретные значения (пороги, размеры) добавляются через errors.Wrapf,
// поэтому вызывающий код проверяет их с помощью errors.Is.
var (
	// ErrInvalidArgument возвращается при некорректных параметрах коррекции:
	// отрицательный размер ядра, пороги вне диапазона или black >= white.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDimensionMismatch возвращается, если эталонное изображение имеет другие размеры.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
