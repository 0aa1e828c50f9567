// Package config определяет структуру конфигурации приложения
// и предоставляет функцию для загрузки настроек из JSON- или YAML-файла.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// PathsConfig содержит настройки, связанные с путями файловой системы.
type PathsConfig struct {
	// Input указывает путь к исправляемому изображению.
	Input string `json:"input" yaml:"input"`
	// ResultsDir указывает директорию, куда будет сохранено исправленное изображение.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
	// OutputSuffix добавляется к имени входного файла перед расширением.
	OutputSuffix string `json:"output_suffix" yaml:"output_suffix"`
	// Golden указывает эталонное изображение для проверки; пустая строка отключает проверку.
	Golden string `json:"golden" yaml:"golden"`
}

// AlgorithmConfig содержит параметры прохода коррекции.
type AlgorithmConfig struct {
	// BlackThreshold: пиксели с яркостью <= порога считаются слишком темными.
	BlackThreshold int `json:"black_threshold" yaml:"black_threshold"`
	// WhiteThreshold: пиксели с яркостью >= порога считаются слишком яркими.
	WhiteThreshold int `json:"white_threshold" yaml:"white_threshold"`
	// KernelSize - радиус окрестности, по которой усредняются соседи.
	KernelSize int `json:"kernel_size" yaml:"kernel_size"`
	// Strategy: "sequential" или "parallel".
	Strategy string `json:"strategy" yaml:"strategy"`
	// Workers - размер пула для параллельной стратегии; 0 - по числу ядер CPU.
	Workers int `json:"workers" yaml:"workers"`
	// SharedBuffer включает старый режим, в котором чтение и запись идут в один буфер.
	// При параллельной стратегии результат в этом режиме недетерминирован.
	SharedBuffer bool `json:"shared_buffer" yaml:"shared_buffer"`
	// Rounding: "round" или "truncate".
	Rounding string `json:"rounding" yaml:"rounding"`
}

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	// Level - уровень zerolog ("debug", "info", "warn", ...).
	Level string `json:"level" yaml:"level"`
}

// Config является корневой структурой конфигурации, включающей все остальные секции.
type Config struct {
	Paths     PathsConfig     `json:"paths" yaml:"paths"`
	Algorithm AlgorithmConfig `json:"algorithm" yaml:"algorithm"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// Пути к тестовому изображению и его эталону, используемые по умолчанию.
const (
	DefaultInput  = "images/test_simple_400x300.png"
	DefaultGolden = "golden/test_simple_400x300_golden.png"
)

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Input:        DefaultInput,
			ResultsDir:   "results",
			OutputSuffix: "_corrected",
		},
		Algorithm: AlgorithmConfig{
			BlackThreshold: 1,
			WhiteThreshold: 254,
			// Радиус 1 - окрестность 3x3 без центрального пикселя.
			KernelSize: 1,
			Strategy:   "parallel",
			Rounding:   "round",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// NewConfig пытается загрузить конфигурацию из указанного файла.
// Файлы с расширением .yaml/.yml разбираются как YAML, остальные - как JSON.
// Если файл не существует, логируется предупреждение и возвращается конфигурация по умолчанию.
// Возвращает ошибку, если файл существует, но не может быть прочитан или распарсен.
func NewConfig(path string, logger zerolog.Logger) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", path).Msg("config file not found, using default settings")
			// Отсутствие файла не считается фатальной ошибкой.
			return cfg, nil
		}
		return nil, err
	}

	// Значения из файла накладываются поверх значений по умолчанию.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// GoldenPath возвращает путь к эталону для проверки или пустую строку, если проверка
// не нужна. Для тестового изображения по умолчанию без явно заданного эталона
// используется DefaultGolden.
func (c *Config) GoldenPath() string {
	if c.Paths.Golden == "" && c.Paths.Input == DefaultInput {
		return DefaultGolden
	}
	return c.Paths.Golden
}
