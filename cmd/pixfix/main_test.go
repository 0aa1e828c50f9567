package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mascotmascot1/go-pixfix/internal/imageutils"
	"github.com/mascotmascot1/go-pixfix/internal/pixfix"
)

func writeGray(t *testing.T, path string, rows [][]uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	require.NoError(t, imageutils.SaveImage(path, img))
}

func execute(t *testing.T, logger zerolog.Logger, args ...string) error {
	t.Helper()
	cmd := newRootCmd(logger)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRunCorrectsAndValidates(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.png")
	golden := filepath.Join(dir, "sample_golden.png")
	results := filepath.Join(dir, "results")

	writeGray(t, input, [][]uint8{
		{0, 200, 200},
		{200, 200, 200},
		{200, 200, 0},
	})
	writeGray(t, golden, [][]uint8{
		{200, 200, 200},
		{200, 200, 200},
		{200, 200, 201},
	})

	var logs bytes.Buffer
	err := execute(t, zerolog.New(&logs), input,
		"--config", filepath.Join(dir, "absent.json"),
		"--results-dir", results,
		"--golden", golden,
		"--strategy", "sequential",
	)
	require.NoError(t, err)

	out, err := imageutils.LoadGray(filepath.Join(results, "sample_corrected.png"))
	require.NoError(t, err)
	assert.Equal(t, uint8(200), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(200), out.GrayAt(2, 2).Y)

	assert.Contains(t, logs.String(), "dark pixel found")
	assert.Contains(t, logs.String(), "processing done in")
	assert.Contains(t, logs.String(), "image corrected is available at")
	assert.Contains(t, logs.String(), "pixel does not match with golden")
	assert.Contains(t, logs.String(), `"mismatches":1`)
}

func TestRunConfigFileAndFlagOverride(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flat.png")
	results := filepath.Join(dir, "out")
	writeGray(t, input, [][]uint8{{100, 150, 100}})

	cfgPath := filepath.Join(dir, "pixfix.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
paths:
  input: `+input+`
  results_dir: `+results+`
algorithm:
  white_threshold: 120
`), 0o644))

	// Порог из файла сделал бы 150 дефектным, флаг его перекрывает.
	err := execute(t, zerolog.Nop(), "--config", cfgPath, "--white", "200")
	require.NoError(t, err)

	out, err := imageutils.LoadGray(filepath.Join(results, "flat_corrected.png"))
	require.NoError(t, err)
	assert.Equal(t, uint8(150), out.GrayAt(1, 0).Y)
}

func TestRunInvalidThresholdsFailBeforeLoading(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results")

	err := execute(t, zerolog.Nop(), filepath.Join(dir, "missing.png"),
		"--config", filepath.Join(dir, "absent.json"),
		"--results-dir", results,
		"--black", "200", "--white", "100",
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pixfix.ErrInvalidArgument))
	assert.NoDirExists(t, results)
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results")

	err := execute(t, zerolog.Nop(), filepath.Join(dir, "missing.png"),
		"--config", filepath.Join(dir, "absent.json"),
		"--results-dir", results,
	)
	var imgErr *imageutils.ImageError
	require.True(t, errors.As(err, &imgErr))
	assert.Equal(t, "load", imgErr.Op)
	assert.NoDirExists(t, results)
}

func TestRunGoldenDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.png")
	golden := filepath.Join(dir, "b.png")
	writeGray(t, input, [][]uint8{{100, 100}})
	writeGray(t, golden, [][]uint8{{100, 100}, {100, 100}})

	err := execute(t, zerolog.Nop(), input,
		"--config", filepath.Join(dir, "absent.json"),
		"--results-dir", filepath.Join(dir, "results"),
		"--golden", golden,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pixfix.ErrDimensionMismatch))
}
