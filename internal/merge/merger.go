package merge

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfcmd/internal/common"
	"pdfcmd/internal/pdf"
)

// Merger accumulates documents in append order and writes them as one PDF
type Merger struct {
	conf   *model.Configuration
	logger *slog.Logger
	parts  []part
}

type part struct {
	source string
	data   []byte
	pages  int
}

// NewMerger creates an empty merge target
func NewMerger(conf *model.Configuration, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{conf: conf, logger: logger}
}

// Append adds doc to the target, restricted to r's pages when r is ranged
func (m *Merger) Append(doc *pdf.Document, r MergeRange) error {
	selected := doc
	if r.IsRanged() {
		if err := ValidateBounds(r); err != nil {
			return err
		}
		if *r.End > doc.PageCount() {
			return &RangeError{Range: r, PageCount: doc.PageCount()}
		}

		extracted, err := doc.Extract(r.Pages())
		if err != nil {
			return NewOperationError("append", r.Path, err)
		}
		selected = extracted
	}

	data, err := selected.Bytes()
	if err != nil {
		return NewOperationError("append", r.Path, err)
	}

	m.parts = append(m.parts, part{source: r.Path, data: data, pages: selected.PageCount()})
	m.logger.Debug("Appended document", "file", r.Path, "range", r.String(), "pages", selected.PageCount())
	return nil
}

// Len returns the number of appended documents
func (m *Merger) Len() int {
	return len(m.parts)
}

// PageCount returns the number of pages appended so far
func (m *Merger) PageCount() int {
	total := 0
	for _, p := range m.parts {
		total += p.pages
	}
	return total
}

// Write merges the appended documents and writes the result to w
func (m *Merger) Write(ctx context.Context, w io.Writer) error {
	if len(m.parts) == 0 {
		return ErrNoInputs
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(m.parts) == 1 {
		_, err := w.Write(m.parts[0].data)
		return err
	}

	readers := make([]io.ReadSeeker, len(m.parts))
	for i, p := range m.parts {
		readers[i] = bytes.NewReader(p.data)
	}

	// MergeRaw overwrites the command and validation mode of its configuration
	var conf *model.Configuration
	if m.conf != nil {
		c := *m.conf
		conf = &c
	}

	if err := api.MergeRaw(readers, w, false, conf); err != nil {
		return NewOperationError("write", "", err)
	}
	return nil
}

// WriteFile writes the merged output to path and returns its size. The
// output only replaces path once it is completely written.
func (m *Merger) WriteFile(ctx context.Context, path string) (int64, error) {
	err := common.WriteFileAtomic(path, func(w io.Writer) error {
		return m.Write(ctx, w)
	})
	if err != nil {
		return 0, err
	}

	size := common.FileSize(path)
	m.logger.Info("Wrote merged document", "file", path, "documents", len(m.parts), "pages", m.PageCount(), "size", size)
	return size, nil
}
