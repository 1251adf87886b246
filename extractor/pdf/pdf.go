// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"trpc.group/trpc-go/trpc-docqa-go/extractor"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// Extractor extracts text from PDF documents page by page.
type Extractor struct{}

var _ extractor.Extractor = (*Extractor)(nil)

// New creates a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the PDF and returns its pages in order. A page whose text
// cannot be decoded stays in the result as an empty page so numbering keeps
// matching the source document.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, name string) (*extractor.Extraction, error) {
	readerAt, size, err := toReaderAt(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf %q: %w", name, err)
	}
	doc, err := pdf.NewReader(readerAt, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf %q: %w", name, err)
	}

	total := doc.NumPage()
	ext := &extractor.Extraction{TotalPages: total}
	for i := 1; i <= total; i++ {
		page := doc.Page(i)
		text := ""
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				log.Warnf("pdf %q: page %d text extraction failed: %v", name, i, err)
				text = ""
			}
		}
		ext.Pages = append(ext.Pages, extractor.Page{Text: text, Number: i})
	}
	return ext, nil
}

// toReaderAt makes the input addressable. An *os.File is used directly;
// anything else is buffered into memory.
func toReaderAt(r io.Reader) (io.ReaderAt, int64, error) {
	if ra, ok := r.(io.ReaderAt); ok {
		if rs, ok := r.(io.ReadSeeker); ok {
			size, err := readerSize(rs)
			if err != nil {
				return nil, 0, err
			}
			return ra, size, nil
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// readerSize returns the total size of rs without altering its position.
func readerSize(rs io.ReadSeeker) (int64, error) {
	current, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := rs.Seek(current, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}
