package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// newPDFDecoder returns a decoder that extracts text page by page, joining page texts
// with a blank-line separator in page order.
func newPDFDecoder() decoder {
	return func(data []byte) (string, error) {
		reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("failed to open PDF document: %w", err)
		}

		var sb strings.Builder
		for i := 1; i <= reader.NumPage(); i++ {
			page := reader.Page(i)
			if page.V.IsNull() {
				continue
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				return "", fmt.Errorf("failed to extract text from page %d: %w", i, err)
			}
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
		return sb.String(), nil
	}
}
