package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfcmd/internal/config"
	"pdfcmd/internal/merge"
	"pdfcmd/internal/models"
	"pdfcmd/internal/pdf"
	"pdfcmd/internal/testutil"
)

type mergeFixture struct {
	dir     string
	service *MergeService
	prefs   *PreferencesService
	history *HistoryService
}

func newMergeFixture(t *testing.T) *mergeFixture {
	t.Helper()
	db := setupTestDB(t)
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	cfg.Workers = 2

	prefs := NewPreferencesService(db)
	history := NewHistoryService(db)
	return &mergeFixture{
		dir:     t.TempDir(),
		service: NewMergeService(cfg, prefs, history),
		prefs:   prefs,
		history: history,
	}
}

func (f *mergeFixture) pdf(t *testing.T, name string, pages int) string {
	return testutil.WritePDF(t, f.dir, name, pages, testutil.DefaultWidth)
}

func TestMerge_NoRangesIncludesAllPages(t *testing.T) {
	f := newMergeFixture(t)
	ranges, err := merge.BuildRanges([]string{f.pdf(t, "a.pdf", 2), f.pdf(t, "b.pdf", 3), f.pdf(t, "c.pdf", 1)}, nil)
	require.NoError(t, err)
	out := filepath.Join(f.dir, "out.pdf")

	resp, err := f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: out})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.PageCount)
	assert.Equal(t, 3, resp.InputCount)
	assert.NotEmpty(t, resp.JobID)
	assert.Nil(t, resp.Compression)

	n, err := pdf.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestMerge_WithRanges(t *testing.T) {
	f := newMergeFixture(t)
	ranges, err := merge.BuildRanges([]string{f.pdf(t, "a.pdf", 4), f.pdf(t, "b.pdf", 4)}, []int{0, 2, 1, 4})
	require.NoError(t, err)
	out := filepath.Join(f.dir, "out.pdf")

	resp, err := f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: out})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.PageCount)

	n, err := pdf.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestMerge_InvalidRangeFails(t *testing.T) {
	f := newMergeFixture(t)
	a := f.pdf(t, "a.pdf", 3)
	b := f.pdf(t, "b.pdf", 3)
	out := filepath.Join(f.dir, "out.pdf")

	for _, pair := range [][2]int{{1, 1}, {2, 1}, {3, 0}} {
		ranges, err := merge.BuildRanges([]string{a, b}, []int{0, 1, pair[0], pair[1]})
		require.NoError(t, err)

		_, err = f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: out})
		assert.ErrorIs(t, err, merge.ErrInvalidRange, "range %v", pair)
		assert.NoFileExists(t, out)
	}
}

func TestMerge_RangeBeyondPagesFails(t *testing.T) {
	f := newMergeFixture(t)
	ranges, err := merge.BuildRanges([]string{f.pdf(t, "a.pdf", 1), f.pdf(t, "b.pdf", 2)}, []int{0, 1, 0, 9})
	require.NoError(t, err)
	out := filepath.Join(f.dir, "out.pdf")

	_, err = f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: out})
	assert.ErrorIs(t, err, merge.ErrInvalidRange)
	assert.NoFileExists(t, out)
}

func TestMerge_MissingFileFailsBeforeWrite(t *testing.T) {
	f := newMergeFixture(t)
	a := f.pdf(t, "a.pdf", 1)
	missing := filepath.Join(f.dir, "missing.pdf")
	out := filepath.Join(f.dir, "out.pdf")

	_, err := f.service.Merge(context.Background(), MergeRequest{
		Ranges:     []merge.MergeRange{merge.Whole(a), merge.Whole(missing)},
		OutputPath: out,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, merge.ErrFileNotFound)
	assert.Contains(t, err.Error(), missing)
	assert.NoFileExists(t, out)
}

func TestMerge_UnreadableInputFails(t *testing.T) {
	f := newMergeFixture(t)
	a := f.pdf(t, "a.pdf", 1)
	junk := filepath.Join(f.dir, "junk.pdf")
	require.NoError(t, os.WriteFile(junk, []byte("not a pdf"), 0644))
	out := filepath.Join(f.dir, "out.pdf")

	_, err := f.service.Merge(context.Background(), MergeRequest{
		Ranges:     []merge.MergeRange{merge.Whole(a), merge.Whole(junk)},
		OutputPath: out,
	})
	var opErr *merge.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "open", opErr.Op)
	assert.Equal(t, junk, opErr.Path)
	assert.NoFileExists(t, out)
}

func TestMerge_CompressKeepsPageCount(t *testing.T) {
	f := newMergeFixture(t)
	paths := []string{f.pdf(t, "a.pdf", 2), f.pdf(t, "b.pdf", 3)}
	ranges, err := merge.BuildRanges(paths, nil)
	require.NoError(t, err)

	plainOut := filepath.Join(f.dir, "plain.pdf")
	plain, err := f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: plainOut})
	require.NoError(t, err)

	compressedOut := filepath.Join(f.dir, "compressed.pdf")
	compressed, err := f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: compressedOut, Compress: true})
	require.NoError(t, err)
	require.NotNil(t, compressed.Compression)

	plainPages, err := pdf.PageCountFile(plainOut)
	require.NoError(t, err)
	compressedPages, err := pdf.PageCountFile(compressedOut)
	require.NoError(t, err)

	assert.Equal(t, plainPages, compressedPages)
	assert.Equal(t, plain.PageCount, compressed.PageCount)
	assert.Equal(t, compressed.Compression.CompressedSize, compressed.OutputSize)
}

func TestMerge_RecordsHistory(t *testing.T) {
	f := newMergeFixture(t)
	ranges, err := merge.BuildRanges([]string{f.pdf(t, "a.pdf", 1), f.pdf(t, "b.pdf", 1)}, nil)
	require.NoError(t, err)
	out := filepath.Join(f.dir, "out.pdf")

	resp, err := f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: out})
	require.NoError(t, err)

	_, err = f.service.Merge(context.Background(), MergeRequest{
		Ranges:     []merge.MergeRange{merge.Whole(filepath.Join(f.dir, "gone.pdf"))},
		OutputPath: out,
	})
	require.Error(t, err)

	jobs, err := f.history.Recent(10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	byID := map[string]models.MergeJob{}
	for _, j := range jobs {
		byID[j.ID] = j
	}
	ok := byID[resp.JobID]
	assert.Equal(t, models.JobStatusCompleted, ok.Status)
	assert.Equal(t, 2, ok.PageCount)
	assert.Equal(t, 2, ok.InputCount)

	stats, err := f.history.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FailedJobs)
}

func TestMerge_HistoryDisabled(t *testing.T) {
	f := newMergeFixture(t)
	f.service.config.History = false
	ranges, err := merge.BuildRanges([]string{f.pdf(t, "a.pdf", 1), f.pdf(t, "b.pdf", 1)}, nil)
	require.NoError(t, err)

	_, err = f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: filepath.Join(f.dir, "out.pdf")})
	require.NoError(t, err)

	jobs, err := f.history.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMerge_WithoutDatabase(t *testing.T) {
	cfg := config.New()
	service := NewMergeService(cfg, nil, nil)
	dir := t.TempDir()
	a := testutil.WritePDF(t, dir, "a.pdf", 1, testutil.DefaultWidth)
	b := testutil.WritePDF(t, dir, "b.pdf", 1, testutil.DefaultWidth)

	resp, err := service.Merge(context.Background(), MergeRequest{
		Ranges:     []merge.MergeRange{merge.Whole(a), merge.Whole(b)},
		OutputPath: filepath.Join(dir, "out.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.PageCount)
	assert.False(t, service.CompressByDefault())
}

func TestMerge_CancelledContext(t *testing.T) {
	f := newMergeFixture(t)
	ranges, err := merge.BuildRanges([]string{f.pdf(t, "a.pdf", 1), f.pdf(t, "b.pdf", 1)}, nil)
	require.NoError(t, err)
	out := filepath.Join(f.dir, "out.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.service.Merge(ctx, MergeRequest{Ranges: ranges, OutputPath: out})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
}

func TestCompressByDefault(t *testing.T) {
	f := newMergeFixture(t)
	assert.False(t, f.service.CompressByDefault())

	require.NoError(t, f.prefs.Set(PrefCompressByDefault, "true"))
	assert.True(t, f.service.CompressByDefault())
}

func TestTreat_Copy(t *testing.T) {
	f := newMergeFixture(t)
	in := f.pdf(t, "in.pdf", 3)
	out := filepath.Join(f.dir, "copy.pdf")

	resp, err := f.service.Treat(context.Background(), TreatRequest{InputPath: in, OutputPath: out})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.PageCount)
	assert.Equal(t, resp.MergedSize, resp.OutputSize)

	original, err := os.ReadFile(in)
	require.NoError(t, err)
	copied, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, original, copied)
}

func TestTreat_Compress(t *testing.T) {
	f := newMergeFixture(t)
	in := f.pdf(t, "in.pdf", 2)
	out := filepath.Join(f.dir, "small.pdf")

	resp, err := f.service.Treat(context.Background(), TreatRequest{InputPath: in, OutputPath: out, Compress: true})
	require.NoError(t, err)
	require.NotNil(t, resp.Compression)
	assert.Equal(t, 2, resp.PageCount)

	n, err := pdf.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTreat_MissingFile(t *testing.T) {
	f := newMergeFixture(t)
	out := filepath.Join(f.dir, "out.pdf")

	_, err := f.service.Treat(context.Background(), TreatRequest{InputPath: filepath.Join(f.dir, "nope.pdf"), OutputPath: out})
	assert.ErrorIs(t, err, merge.ErrFileNotFound)
	assert.NoFileExists(t, out)
}

func TestMerge_ValidationModePreference(t *testing.T) {
	f := newMergeFixture(t)
	paths := make([]string, 2)
	for i, name := range []string{"a.pdf", "b.pdf"} {
		paths[i] = filepath.Join(f.dir, name)
		require.NoError(t, os.WriteFile(paths[i], testutil.BuildGroupPDF13(1), 0644))
	}
	ranges, err := merge.BuildRanges(paths, nil)
	require.NoError(t, err)

	resp, err := f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: filepath.Join(f.dir, "relaxed.pdf")})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.PageCount)

	require.NoError(t, f.prefs.Set(PrefValidationMode, "strict"))
	strictOut := filepath.Join(f.dir, "strict.pdf")

	_, err = f.service.Merge(context.Background(), MergeRequest{Ranges: ranges, OutputPath: strictOut})
	var opErr *merge.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "open", opErr.Op)
	assert.Equal(t, paths[0], opErr.Path)
	assert.NoFileExists(t, strictOut)
}

func TestTreat_SameInputAndOutput(t *testing.T) {
	f := newMergeFixture(t)
	path := f.pdf(t, "self.pdf", 3)

	resp, err := f.service.Treat(context.Background(), TreatRequest{InputPath: path, OutputPath: path})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.PageCount)

	n, err := pdf.PageCountFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
