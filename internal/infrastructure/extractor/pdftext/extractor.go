// Package pdftext extracts plain text from stored PDF documents.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
	"github.com/kirillkom/contract-intelligence/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract reads the stored document and concatenates the text of every page.
// A document that yields no text at all is reported as unreadable so the
// pipeline can fail the record instead of scoring an empty draft.
func (e *Extractor) Extract(ctx context.Context, storagePath string) (string, error) {
	reader, err := e.storage.Open(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read stored document: %w", err)
	}

	doc, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "parse pdf", err)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= doc.NumPage(); pageNum++ {
		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not sink a multi-page contract.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&builder, "--- Page %d ---\n%s\n", pageNum, text)
	}

	extracted := strings.TrimSpace(builder.String())
	if extracted == "" {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "extract text",
			fmt.Errorf("document contains no extractable text"))
	}
	return extracted, nil
}
