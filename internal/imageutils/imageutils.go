// Package imageutils предоставляет вспомогательные функции для загрузки, сохранения
// и конвертации изображений в градации серого.
package imageutils

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ImageError описывает сбой ввода-вывода изображения. Op равен "load" или "save".
type ImageError struct {
	Op   string
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s image '%s': %v", e.Op, e.Path, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// OutputPath строит путь для исправленного изображения: суффикс вставляется
// перед расширением, файл кладется в resultsDir.
//
// Пример: OutputPath("images/a.png", "results", "_corrected") -> "results/a_corrected.png".
func OutputPath(input, resultsDir, suffix string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(resultsDir, name+suffix+ext)
}

// LoadImage загружает изображение из файла.
//
// Принимает:
// filename string: путь к изображению (PNG, JPEG, GIF, BMP, TIFF, WebP).
//
// Возвращает:
// image.Image: загруженное изображение.
// error: *ImageError, если не удалось загрузить изображение.
func LoadImage(filename string) (image.Image, error) {
	img, err := imaging.Open(filename)
	if err != nil {
		return nil, &ImageError{Op: "load", Path: filename, Err: err}
	}
	return img, nil
}

// ConvertToGray преобразует изображение в градации серого.
// Если изображение уже *image.Gray, возвращается оно само.
func ConvertToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	grayImg := image.NewGray(bounds)
	draw.Draw(grayImg, bounds, img, bounds.Min, draw.Src)
	return grayImg
}

// LoadGray загружает изображение и сразу переводит его в градации серого.
func LoadGray(filename string) (*image.Gray, error) {
	img, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}
	return ConvertToGray(img), nil
}

// SaveImage сохраняет изображение без потерь: всегда в формате PNG,
// независимо от расширения файла.
//
// Принимает:
// filename string: путь для сохранения.
// img *image.Gray: изображение в градациях серого.
//
// Возвращает:
// error: *ImageError, если не удалось сохранить файл.
func SaveImage(filename string, img *image.Gray) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return &ImageError{Op: "save", Path: filename, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			if err == nil {
				err = &ImageError{Op: "save", Path: filename, Err: closeErr}
			}
		}
		// Недописанный файл не оставляем.
		if err != nil {
			_ = os.Remove(filename)
		}
	}()

	if err = imaging.Encode(file, img, imaging.PNG); err != nil {
		return &ImageError{Op: "save", Path: filename, Err: err}
	}
	return nil
}
