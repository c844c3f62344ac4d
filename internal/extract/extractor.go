// Package extract converts uploaded documents to plain text. The heavy PDF and DOCX
// decoders are constructed on first use and cached for the process lifetime, so startup
// cost stays independent of the parsing libraries until a document is actually uploaded.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/biomente/biomente/internal/domain"
)

// decoder turns raw file bytes into plain text.
type decoder func(data []byte) (string, error)

// Extractor dispatches uploaded files to a format-specific text decoder by extension.
type Extractor struct {
	pdfOnce  sync.Once
	pdfDec   decoder
	docxOnce sync.Once
	docxDec  decoder
}

// New creates an Extractor. No decoding library is touched until the first matching file.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of the named file. The extension decides the decoder;
// unknown extensions are rejected before any decoding is attempted. Whether the extracted
// text is empty is the caller's concern.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "txt":
		return string(data), nil
	case "pdf":
		e.pdfOnce.Do(func() { e.pdfDec = newPDFDecoder() })
		return e.pdfDec(data)
	case "docx":
		e.docxOnce.Do(func() { e.docxDec = newDocxDecoder() })
		return e.docxDec(data)
	default:
		return "", domain.NewDomainError(domain.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported file format: .%s", ext))
	}
}
