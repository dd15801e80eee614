package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
)

// Extractor dispatches on the declared content type. Upload already rejects
// unsupported types; the fallthrough here catches rows written by older code.
type Extractor struct {
	log *slog.Logger
}

func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{log: log}
}

func (e *Extractor) Extract(_ context.Context, path, contentType string) (Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read file: %w", err)
	}

	switch contentType {
	case constants.ContentTypePDF:
		res, err := extractPDF(content)
		if err != nil {
			return Result{}, err
		}
		e.log.Info("extracted pdf", "path", path, "pages", res.PageCount)
		return res, nil
	case constants.ContentTypeDOCX:
		res, err := extractDOCX(content)
		if err != nil {
			return Result{}, err
		}
		e.log.Info("extracted docx", "path", path)
		return res, nil
	default:
		return Result{}, fmt.Errorf("%w: content type %q", common.ErrUnsupportedFormat, contentType)
	}
}
