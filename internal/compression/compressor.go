package compression

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdfcmd/internal/common"
	"pdfcmd/internal/pdf"
)

// Compressor re-encodes page content streams with Flate
type Compressor struct {
	conf   *model.Configuration
	logger *slog.Logger
}

// NewCompressor creates a new compressor instance
func NewCompressor(conf *model.Configuration, logger *slog.Logger) *Compressor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compressor{
		conf:   conf,
		logger: logger,
	}
}

// CompressFile compresses the content streams of every page of inputPath and
// writes the result to outputPath. The two may be the same file.
func (c *Compressor) CompressFile(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	originalSize := common.FileSize(inputPath)

	doc, err := pdf.Open(ctx, inputPath, c.conf)
	if err != nil {
		return nil, err
	}

	encoded, err := c.CompressDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := writeAtomically(doc, outputPath); err != nil {
		return nil, err
	}

	compressedSize := common.FileSize(outputPath)
	result := &Result{
		InputPath:        inputPath,
		OutputPath:       outputPath,
		PageCount:        doc.PageCount(),
		StreamsEncoded:   encoded,
		OriginalSize:     originalSize,
		CompressedSize:   compressedSize,
		CompressionRatio: common.SavedRatio(originalSize, compressedSize),
	}

	c.logger.Info("Compressed content streams",
		"file", outputPath,
		"pages", result.PageCount,
		"streams", encoded,
		"original_size", originalSize,
		"compressed_size", compressedSize)

	return result, nil
}

// CompressDocument compresses the content streams of every page of doc and
// returns how many streams were re-encoded
func (c *Compressor) CompressDocument(ctx context.Context, doc *pdf.Document) (int, error) {
	total := 0
	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := c.CompressContentStreams(doc, pageNr)
		if err != nil {
			return total, fmt.Errorf("page %d: %w", pageNr, err)
		}
		total += n
	}
	return total, nil
}

// CompressContentStreams re-encodes the content streams of one page with
// Flate and returns how many streams changed
func (c *Compressor) CompressContentStreams(doc *pdf.Document, pageNr int) (int, error) {
	xRefTable := doc.Context().XRefTable

	pageDict, _, _, err := xRefTable.PageDict(pageNr, false)
	if err != nil {
		return 0, err
	}
	if pageDict == nil {
		return 0, fmt.Errorf("page %d not found", pageNr)
	}

	obj, found := pageDict.Find("Contents")
	if !found || obj == nil {
		return 0, nil
	}

	var refs []types.IndirectRef
	switch o := obj.(type) {
	case types.IndirectRef:
		// Contents may point at an array of streams rather than a stream.
		deref, err := xRefTable.Dereference(o)
		if err != nil {
			return 0, err
		}
		if arr, ok := deref.(types.Array); ok {
			refs = indirectRefs(arr)
		} else {
			refs = []types.IndirectRef{o}
		}
	case types.Array:
		refs = indirectRefs(o)
	default:
		return 0, nil
	}

	encoded := 0
	for _, ref := range refs {
		changed, err := c.compressStreamObject(xRefTable, ref)
		if err != nil {
			return encoded, err
		}
		if changed {
			encoded++
		}
	}
	return encoded, nil
}

func (c *Compressor) compressStreamObject(xRefTable *model.XRefTable, ref types.IndirectRef) (bool, error) {
	entry, found := xRefTable.Table[ref.ObjectNumber.Value()]
	if !found || entry == nil || entry.Free {
		return false, nil
	}

	sd, ok := entry.Object.(types.StreamDict)
	if !ok {
		return false, nil
	}

	changed, err := compressStream(&sd)
	if err != nil {
		c.logger.Warn("Leaving content stream as is", "object", ref.ObjectNumber.Value(), "error", err)
		return false, nil
	}
	if changed {
		entry.Object = sd
	}
	return changed, nil
}

// compressStream Flate-encodes sd unless it already is
func compressStream(sd *types.StreamDict) (bool, error) {
	if sd.HasSoleFilterNamed(filter.Flate) {
		return false, nil
	}

	if sd.Content == nil {
		if len(sd.FilterPipeline) == 0 {
			sd.Content = sd.Raw
		} else if err := sd.Decode(); err != nil {
			return false, err
		}
	}
	if sd.Content == nil {
		return false, nil
	}

	sd.FilterPipeline = []types.PDFFilter{{Name: filter.Flate}}
	sd.Dict.Update("Filter", types.Name(filter.Flate))
	sd.Dict.Delete("DecodeParms")

	if err := sd.Encode(); err != nil {
		return false, err
	}

	streamLength := int64(len(sd.Raw))
	sd.StreamLength = &streamLength
	sd.StreamLengthObjNr = nil
	sd.Dict.Update("Length", types.Integer(streamLength))
	return true, nil
}

func indirectRefs(arr types.Array) []types.IndirectRef {
	refs := make([]types.IndirectRef, 0, len(arr))
	for _, o := range arr {
		if ref, ok := o.(types.IndirectRef); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func writeAtomically(doc *pdf.Document, outputPath string) error {
	return common.WriteFileAtomic(outputPath, func(w io.Writer) error {
		if _, err := doc.WriteTo(w); err != nil {
			return fmt.Errorf("failed to write compressed document: %w", err)
		}
		return nil
	})
}
