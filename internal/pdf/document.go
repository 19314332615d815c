// Package pdf wraps the pdfcpu engine behind the few document operations the
// merge pipeline needs: open, extract pages, count pages and write.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfcmd/internal/common"
)

func init() {
	// Keep pdfcpu from creating its own config directory.
	api.DisableConfigDir()
}

// Document is an opened PDF held in memory.
type Document struct {
	Path string
	ctx  *model.Context
}

// NewConfiguration returns a pdfcpu configuration for the given validation mode
func NewConfiguration(validationMode string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if validationMode == common.ValidationStrict {
		conf.ValidationMode = model.ValidationStrict
	}
	return conf
}

// Open reads the PDF at path
func Open(ctx context.Context, path string, conf *model.Configuration) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := OpenReader(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// OpenReader reads a PDF from rs and validates it in the configuration's
// validation mode
func OpenReader(rs io.ReadSeeker, conf *model.Configuration) (*Document, error) {
	pdfCtx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, err
	}
	return &Document{ctx: pdfCtx}, nil
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Context exposes the underlying pdfcpu context
func (d *Document) Context() *model.Context {
	return d.ctx
}

// Extract returns a new document holding only the given 1-based pages, in order
func (d *Document) Extract(pages []int) (*Document, error) {
	for _, p := range pages {
		if p < 1 || p > d.PageCount() {
			return nil, fmt.Errorf("page %d out of bounds (document has %d pages)", p, d.PageCount())
		}
	}

	extracted, err := pdfcpu.ExtractPages(d.ctx, pages, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pages: %w", err)
	}
	return &Document{Path: d.Path, ctx: extracted}, nil
}

// WriteTo serializes the document to w
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := api.WriteContext(d.ctx, cw); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Bytes serializes the document into memory
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PageCountFile opens path and returns its page count
func PageCountFile(path string) (int, error) {
	doc, err := Open(context.Background(), path, NewConfiguration(common.ValidationRelaxed))
	if err != nil {
		return 0, err
	}
	return doc.PageCount(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
