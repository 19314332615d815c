// Package testutil builds small PDF fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DefaultWidth is the MediaBox width used when a fixture does not pick one.
const DefaultWidth = 612

// BuildPDF returns a minimal PDF with the given number of pages. Every page
// is width x 792 points and carries an unfiltered content stream, so the
// fixture has something to compress.
func BuildPDF(pages int, width int) []byte {
	return build("1.4", pages, width, "")
}

// BuildGroupPDF13 returns a PDF 1.3 file whose pages carry a transparency
// group, an entry only defined since PDF 1.4. Relaxed validation accepts it,
// strict validation does not.
func BuildGroupPDF13(pages int) []byte {
	return build("1.3", pages, DefaultWidth, "/Group<</S/Transparency>>")
}

func build(version string, pages, width int, pageExtra string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, 2+2*pages)

	fmt.Fprintf(&buf, "%%PDF-%s\n", version)

	offsets = append(offsets, buf.Len())
	buf.WriteString("1 0 obj\n<</Type/Catalog/Pages 2 0 R>>\nendobj\n")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	offsets = append(offsets, buf.Len())
	fmt.Fprintf(&buf, "2 0 obj\n<</Type/Pages/Kids[%s]/Count %d>>\nendobj\n", strings.Join(kids, " "), pages)

	for i := 0; i < pages; i++ {
		pageObj := 3 + 2*i
		contentObj := pageObj + 1
		content := pageContent(i)

		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n<</Type/Page/Parent 2 0 R/MediaBox[0 0 %d 792]/Resources<<>>%s/Contents %d 0 R>>\nendobj\n",
			pageObj, width, pageExtra, contentObj)

		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n<</Length %d>>\nstream\n%s\nendstream\nendobj\n", contentObj, len(content), content)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	// Each entry is exactly 20 bytes including the two byte EOL.
	fmt.Fprintf(&buf, "%010d %05d f \r\n", 0, 65535)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \r\n", off, 0)
	}
	fmt.Fprintf(&buf, "trailer\n<</Size %d/Root 1 0 R>>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

// WritePDF writes a BuildPDF fixture into dir and returns its path.
func WritePDF(t testing.TB, dir, name string, pages, width int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildPDF(pages, width), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

func pageContent(page int) string {
	var sb strings.Builder
	for row := 0; row < 40; row++ {
		fmt.Fprintf(&sb, "q 0.2 0.4 0.6 rg %d %d 100 10 re f Q\n", 10+page, 10+row*15)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
