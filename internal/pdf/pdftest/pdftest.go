// Package pdftest generates small PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Page describes one page of a generated PDF: text lines drawn top down,
// or an embedded grayscale image instead of text.
type Page struct {
	Lines []string
	Image bool
}

// Write writes a minimal PDF named name into dir and returns its path. The
// Helvetica font has every glyph 500 units wide, so text positions are
// predictable.
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()

	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	catalog := add("") // filled in below
	pagesObj := add("")
	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>")

	var kids []string
	for _, p := range pages {
		var content, resources string
		if p.Image {
			img := add("<< /Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray " +
				"/BitsPerComponent 8 /Length 4 >>\nstream\n\x00\xff\xff\x00\nendstream")
			content = "q 200 0 0 200 100 500 cm /Im1 Do Q"
			resources = fmt.Sprintf("<< /XObject << /Im1 %d 0 R >> >>", img)
		} else {
			var b strings.Builder
			b.WriteString("BT /F1 10 Tf 40 800 Td")
			for i, line := range p.Lines {
				if i > 0 {
					b.WriteString(" 0 -16 Td")
				}
				fmt.Fprintf(&b, " (%s) Tj", escapePDFString(line))
			}
			b.WriteString(" ET")
			content = b.String()
			resources = fmt.Sprintf("<< /Font << /F1 %d 0 R >> >>", font)
		}
		stream := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		page := add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 595 842] /Resources %s /Contents %d 0 R >>",
			pagesObj, resources, stream))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}
	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	objects[pagesObj-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, catalog, xref)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// GradeSheet is a two-page grade sheet with three valid rows and one row
// whose letter grade is invalid.
var GradeSheet = []Page{
	{Lines: []string{
		"BANG DIEM HOC PHAN",
		"STT MSSV Ho va ten GK TK TH CK TB",
		"1 20210001 Nguyen Van A 8.00 7.50 9.00 8.50 8.25 B",
		"2 20210002 Tran Thi B 6.00 7.00 V 5.00 6.00 6.00 C",
	}},
	{Lines: []string{
		"3 20210003 Le Van C 9.00 9.00 9.50 9.00 9.10 X",
		"4 20210004 Pham Van D 4.00 5.00 3.00 2.00 3.20 F",
	}},
}
