package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// newDocxDecoder returns a decoder that extracts the raw text of a DOCX document.
func newDocxDecoder() decoder {
	return func(data []byte) (string, error) {
		doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("failed to open DOCX document: %w", err)
		}

		var sb strings.Builder
		for _, item := range doc.Document.Body.Items {
			switch block := item.(type) {
			case *docx.Paragraph:
				sb.WriteString(block.String())
				sb.WriteString("\n")
			case *docx.Table:
				sb.WriteString(block.String())
				sb.WriteString("\n")
			}
		}
		return sb.String(), nil
	}
}
