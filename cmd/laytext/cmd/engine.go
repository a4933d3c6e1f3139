package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/laytext/internal/config"
	"github.com/MeKo-Tech/laytext/internal/ocr"
	"github.com/MeKo-Tech/laytext/internal/ocr/tesseract"
)

// EngineFactory creates the OCR engine for a run.
type EngineFactory func(cfg *config.Config) (ocr.Engine, error)

// DefaultEngine builds the engine selected by ocr.engine. The gosseract
// engine needs a binary built with the "ocr" tag.
func DefaultEngine(cfg *config.Config) (ocr.Engine, error) {
	switch cfg.OCR.Engine {
	case config.EngineGosseract:
		eng, err := tesseract.New()
		if err != nil {
			return nil, err
		}
		return eng, nil
	case config.EngineCLI, "":
		return ocr.NewCLIEngine(cfg.OCR.TesseractCmd), nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.OCR.Engine)
	}
}

// checkEngine fails early when the engine can tell it will not work.
func checkEngine(eng ocr.Engine) error {
	if a, ok := eng.(interface{ Available() error }); ok {
		return a.Available()
	}
	return nil
}
