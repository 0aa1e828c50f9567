// Package pixfix содержит основную логику поиска и исправления дефектных пикселей
// (слишком темных или слишком ярких) в изображении в градациях серого.
package pixfix

import (
	"image"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mascotmascot1/go-pixfix/internal/config"
)

// Strategy определяет, как проход распределяется по пикселям изображения.
type Strategy int

const (
	// Sequential обходит пиксели по одному в построчном порядке.
	Sequential Strategy = iota
	// Parallel раздает пачки строк фиксированному пулу воркеров.
	Parallel
)

func (s Strategy) String() string {
	if s == Parallel {
		return "parallel"
	}
	return "sequential"
}

// ParseStrategy разбирает стратегию из конфигурации или флага командной строки.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "seq":
		return Sequential, nil
	case "", "parallel", "par":
		return Parallel, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "unknown strategy %q (want \"sequential\" or \"parallel\")", s)
}

// Summary - итог одного прохода коррекции.
type Summary struct {
	Strategy Strategy
	Elapsed  time.Duration
	// Pixels - количество обработанных координат.
	Pixels    int
	Corrected int
	Dark      int
	Bright    int
}

func (s *Summary) add(res Result) {
	s.Pixels++
	if !res.Corrected {
		return
	}
	s.Corrected++
	if res.Polarity == Dark {
		s.Dark++
	} else {
		s.Bright++
	}
}

func (s *Summary) merge(o Summary) {
	s.Pixels += o.Pixels
	s.Corrected += o.Corrected
	s.Dark += o.Dark
	s.Bright += o.Bright
}

// Runner инкапсулирует параметры прохода (стратегию, размер пула, режим буфера)
// и зависимости (корректор, логгер).
type Runner struct {
	corrector    *Corrector
	strategy     Strategy
	workers      int
	sharedBuffer bool
	logger       zerolog.Logger
}

// NewRunner является конструктором для Runner. Все параметры алгоритма проверяются
// здесь, до загрузки изображения; при ошибке возвращается ErrInvalidArgument
// с указанием некорректных значений.
func NewRunner(cfg *config.Config, logger zerolog.Logger) (*Runner, error) {
	alg := cfg.Algorithm

	th, err := NewThresholds(alg.BlackThreshold, alg.WhiteThreshold)
	if err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(alg.Strategy)
	if err != nil {
		return nil, err
	}
	rounding, err := ParseRounding(alg.Rounding)
	if err != nil {
		return nil, err
	}
	if alg.Workers < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "workers must be non-negative, got %d", alg.Workers)
	}
	corrector, err := NewCorrector(th, alg.KernelSize, rounding, logger)
	if err != nil {
		return nil, err
	}

	// 0 означает "по числу логических ядер CPU".
	workers := lo.Ternary(alg.Workers == 0, runtime.NumCPU(), alg.Workers)

	// Общий буфер читают и пишут все воркеры одновременно, а это гонка данных.
	// Поэтому в этом режиме проход всегда последовательный.
	if alg.SharedBuffer && strategy == Parallel {
		logger.Warn().Msg("shared buffer mode does not support the parallel strategy, falling back to sequential")
		strategy = Sequential
	}

	return &Runner{
		corrector:    corrector,
		strategy:     strategy,
		workers:      workers,
		sharedBuffer: alg.SharedBuffer,
		logger:       logger,
	}, nil
}

// Run выполняет один проход коррекции над img и изменяет его на месте.
//
// По умолчанию все чтения идут из копии изображения, снятой до прохода, а запись -
// в img. Поэтому результат не зависит ни от порядка обхода, ни от стратегии.
// В режиме общего буфера (shared_buffer) чтения и записи идут в один и тот же img,
// и обход всегда последовательный: он видит уже исправленных соседей слева и сверху.
func (r *Runner) Run(img *image.Gray) (Summary, error) {
	r.logger.Info().
		Stringer("strategy", r.strategy).
		Bool("shared_buffer", r.sharedBuffer).
		Msg("starting defect correction...")

	src := img
	if !r.sharedBuffer {
		src = snapshot(img)
	}

	start := time.Now()
	var (
		summary Summary
		err     error
	)
	switch r.strategy {
	case Parallel:
		summary, err = r.runParallel(src, img)
	default:
		summary, err = r.runSequential(src, img)
	}
	if err != nil {
		return Summary{}, err
	}
	summary.Strategy = r.strategy
	summary.Elapsed = time.Since(start)

	r.logger.Info().
		Int("pixels", summary.Pixels).
		Int("corrected", summary.Corrected).
		Int("dark", summary.Dark).
		Int("bright", summary.Bright).
		Msgf("processing done in %.3f secs", summary.Elapsed.Seconds())
	return summary, nil
}

// runSequential обходит все координаты в построчном порядке в текущей горутине.
func (r *Runner) runSequential(src, dst *image.Gray) (Summary, error) {
	var summary Summary
	bounds := dst.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := r.correctRow(src, dst, y, &summary); err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

// runParallel делит изображение на пачки строк и раздает их пулу из r.workers горутин.
//
// Алгоритм:
// 1. Строки разбиваются на пачки; пачек в несколько раз больше, чем воркеров,
// чтобы нагрузка выравнивалась, если дефекты сосредоточены в одной полосе.
// 2. Все пачки кладутся в буферизованную очередь, после чего она закрывается,
// так что отправитель никогда не блокируется.
// 3. Каждый воркер читает пачки из очереди до ее опустошения и ведет свою статистику.
// 4. После g.Wait() статистика воркеров суммируется.
//
// Каждая строка попадает ровно в одну пачку, поэтому никакие два воркера
// не пишут в одну и ту же координату.
func (r *Runner) runParallel(src, dst *image.Gray) (Summary, error) {
	bounds := dst.Bounds()
	height := bounds.Dy()
	if height == 0 {
		return Summary{}, nil
	}

	batchSize := max(1, height/(r.workers*4))
	batches := lo.Chunk(lo.RangeFrom(bounds.Min.Y, height), batchSize)

	queue := make(chan []int, len(batches))
	for _, batch := range batches {
		queue <- batch
	}
	close(queue)

	// Каждый воркер пишет только в свою ячейку, поэтому блокировки не нужны.
	partial := make([]Summary, r.workers)
	var g errgroup.Group
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			for batch := range queue {
				for _, y := range batch {
					if err := r.correctRow(src, dst, y, &partial[i]); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, p := range partial {
		summary.merge(p)
	}
	return summary, nil
}

func (r *Runner) correctRow(src, dst *image.Gray, y int, summary *Summary) error {
	bounds := dst.Bounds()
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		res, err := r.corrector.Correct(src, dst, x, y)
		if err != nil {
			return errors.Wrapf(err, "correct pixel x=%d y=%d", x, y)
		}
		summary.add(res)
	}
	return nil
}

// snapshot возвращает независимую копию изображения для чтения во время прохода.
func snapshot(img *image.Gray) *image.Gray {
	return &image.Gray{
		Pix:    slices.Clone(img.Pix),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
}
