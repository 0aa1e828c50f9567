package pixfix

import "github.com/pkg/errors"

// Thresholds задает границы яркости, за пределами которых пиксель считается дефектным.
type Thresholds struct {
	// Black - пиксели с яркостью <= Black считаются слишком темными.
	Black uint8
	// White - пиксели с яркостью >= White считаются слишком яркими.
	White uint8
}

// NewThresholds проверяет пороги и возвращает их в виде Thresholds.
// Значения принимаются как int, чтобы сообщить о выходе за пределы [0, 255],
// а не молча обрезать их.
func NewThresholds(black, white int) (Thresholds, error) {
	if black < 0 || black > 255 || white < 0 || white > 255 {
		return Thresholds{}, errors.Wrapf(ErrInvalidArgument,
			"thresholds must be within [0, 255], got black=%d white=%d", black, white)
	}
	th := Thresholds{Black: uint8(black), White: uint8(white)}
	if err := th.Validate(); err != nil {
		return Thresholds{}, err
	}
	return th, nil
}

// Validate проверяет инвариант Black < White.
func (t Thresholds) Validate() error {
	if t.Black >= t.White {
		return errors.Wrapf(ErrInvalidArgument,
			"black threshold %d must be lower than white threshold %d", t.Black, t.White)
	}
	return nil
}

// IsDefective сообщает, нужно ли корректировать пиксель с яркостью v.
func (t Thresholds) IsDefective(v uint8) bool {
	return v <= t.Black || v >= t.White
}

// IsValid сообщает, может ли пиксель с яркостью v участвовать в усреднении.
func (t Thresholds) IsValid(v uint8) bool {
	return v > t.Black && v < t.White
}
