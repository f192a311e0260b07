//go:build !gosseract

package ocr

import "errors"

// ErrGosseractUnavailable is returned when the binary was built without the gosseract tag.
var ErrGosseractUnavailable = errors.New("gosseract engine not compiled in: rebuild with -tags gosseract")

func newGosseractEngine(Config) (Engine, error) {
	return nil, ErrGosseractUnavailable
}
