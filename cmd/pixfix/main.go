// Package main является точкой входа в приложение go-pixfix.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mascotmascot1/go-pixfix/internal/config"
	"github.com/mascotmascot1/go-pixfix/internal/imageutils"
	"github.com/mascotmascot1/go-pixfix/internal/pixfix"
)

// options хранит значения флагов командной строки.
type options struct {
	configPath   string
	black        int
	white        int
	kernel       int
	strategy     string
	workers      int
	sharedBuffer bool
	rounding     string
	resultsDir   string
	golden       string
	logLevel     string
}

// main - точка входа. Ее единственная задача - настроить окружение (логгер)
// и вызвать корневую команду.
func main() {
	logger := newLogger(os.Stdout)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Fatal().Err(err).Msg("application failed")
	}
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}).
		With().
		Timestamp().
		Str("app", "go-pixfix").
		Logger()
}

// newRootCmd описывает команду pixfix и ее флаги.
// Флаги, заданные явно, перекрывают значения из файла конфигурации.
func newRootCmd(logger zerolog.Logger) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pixfix [image]",
		Short: "Correct too dark and too bright pixels in a grayscale image",
		Long: "pixfix replaces every pixel at or below the black threshold or at or above the\n" +
			"white threshold with the average of its valid neighbours, saves the result and\n" +
			"optionally compares it against a golden image.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(logger, cmd.Flags(), opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "go-pixfix.json", "path to a JSON or YAML config file")
	f.IntVar(&opts.black, "black", 1, "darkness threshold: pixels <= black are corrected")
	f.IntVar(&opts.white, "white", 254, "brightness threshold: pixels >= white are corrected")
	f.IntVar(&opts.kernel, "kernel", 1, "neighbourhood radius")
	f.StringVarP(&opts.strategy, "strategy", "s", "parallel", "sequential or parallel")
	f.IntVarP(&opts.workers, "workers", "w", 0, "worker pool size for the parallel strategy (0 = number of CPUs)")
	f.BoolVar(&opts.sharedBuffer, "shared-buffer", false, "read neighbours from the buffer being written (legacy, always sequential)")
	f.StringVar(&opts.rounding, "rounding", "round", "round or truncate the neighbour average")
	f.StringVarP(&opts.resultsDir, "results-dir", "o", "results", "directory for the corrected image")
	f.StringVarP(&opts.golden, "golden", "g", "", "golden image to validate the result against")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// run содержит основной рабочий процесс приложения: от загрузки конфига до проверки эталона.
// Возвращает ошибку, если какой-либо из шагов не может быть выполнен.
func run(logger zerolog.Logger, flags *pflag.FlagSet, opts *options, args []string) error {
	// Загружаем конфигурацию и накладываем явно заданные флаги.
	cfg, err := config.NewConfig(opts.configPath, logger)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	applyFlags(cfg, flags, opts, args)

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", cfg.Logging.Level, err)
	}
	logger = logger.Level(level)

	// Параметры проверяются до загрузки изображения.
	runner, err := pixfix.NewRunner(cfg, logger)
	if err != nil {
		return fmt.Errorf("invalid correction parameters: %w", err)
	}

	// --- 1. Загрузка изображения ---
	logger.Info().Str("path", cfg.Paths.Input).Msg("loading image...")
	img, err := imageutils.LoadGray(cfg.Paths.Input)
	if err != nil {
		return err
	}

	// --- 2. Коррекция ---
	if _, err = runner.Run(img); err != nil {
		return fmt.Errorf("correction pass failed: %w", err)
	}

	// --- 3. Сохранение результата ---
	if err = os.MkdirAll(cfg.Paths.ResultsDir, 0755); err != nil {
		return fmt.Errorf("error creating results directory '%s': %w", cfg.Paths.ResultsDir, err)
	}
	outPath := imageutils.OutputPath(cfg.Paths.Input, cfg.Paths.ResultsDir, cfg.Paths.OutputSuffix)
	if err = imageutils.SaveImage(outPath, img); err != nil {
		return err
	}
	logger.Info().Msgf("image corrected is available at: %s", outPath)

	// --- 4. Проверка по эталону ---
	goldenPath := cfg.GoldenPath()
	if goldenPath == "" {
		return nil
	}
	golden, err := imageutils.LoadGray(goldenPath)
	if err != nil {
		return err
	}
	report, err := pixfix.Compare(img, golden)
	if err != nil {
		return fmt.Errorf("golden check failed: %w", err)
	}
	report.Log(logger)
	return nil
}

// applyFlags переносит в конфигурацию только те флаги, которые пользователь задал явно,
// чтобы значения по умолчанию флагов не затирали значения из файла.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet, opts *options, args []string) {
	if len(args) > 0 {
		cfg.Paths.Input = args[0]
	}
	if flags.Changed("black") {
		cfg.Algorithm.BlackThreshold = opts.black
	}
	if flags.Changed("white") {
		cfg.Algorithm.WhiteThreshold = opts.white
	}
	if flags.Changed("kernel") {
		cfg.Algorithm.KernelSize = opts.kernel
	}
	if flags.Changed("strategy") {
		cfg.Algorithm.Strategy = opts.strategy
	}
	if flags.Changed("workers") {
		cfg.Algorithm.Workers = opts.workers
	}
	if flags.Changed("shared-buffer") {
		cfg.Algorithm.SharedBuffer = opts.sharedBuffer
	}
	if flags.Changed("rounding") {
		cfg.Algorithm.Rounding = opts.rounding
	}
	if flags.Changed("results-dir") {
		cfg.Paths.ResultsDir = opts.resultsDir
	}
	if flags.Changed("golden") {
		cfg.Paths.Golden = opts.golden
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
}
