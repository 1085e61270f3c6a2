// Package testpdf assembles minimal but structurally valid PDF files
// for tests. Cross-reference offsets are computed while writing, so
// generated documents always parse; fixtures never need to live on
// disk.
package testpdf

import (
	"bytes"
	"fmt"
)

// Page describes the billable features of one generated page.
type Page struct {
	Widgets     int // interactive form widget annotations
	TextAnnots  int // non-widget annotations, invisible to pricing
	ContentSize int // content stream length in bytes; 0 omits Contents
	Images      int // image XObject resources
}

// Doc describes a whole generated document. Marked controls the
// catalog's MarkInfo dict: nil omits it entirely, otherwise the
// Marked flag carries the pointed-to value.
type Doc struct {
	Marked *bool
	Pages  []Page
}

// Bool is a convenience for Doc.Marked literals.
func Bool(b bool) *bool { return &b }

// Build renders the document into PDF bytes.
func Build(doc Doc) []byte {
	w := &writer{}

	// Object numbers are assigned up front: 1 catalog, 2 page tree,
	// then per page the page dict followed by its content stream,
	// annotations, and image XObjects.
	next := 3
	type pageNums struct {
		page    int
		content int
		annots  []int
		widgets []int
		images  []int
	}
	layout := make([]pageNums, len(doc.Pages))
	var fieldRefs []int
	for i, p := range doc.Pages {
		n := pageNums{page: next}
		next++
		if p.ContentSize > 0 {
			n.content = next
			next++
		}
		for j := 0; j < p.Widgets; j++ {
			n.widgets = append(n.widgets, next)
			n.annots = append(n.annots, next)
			fieldRefs = append(fieldRefs, next)
			next++
		}
		for j := 0; j < p.TextAnnots; j++ {
			n.annots = append(n.annots, next)
			next++
		}
		for j := 0; j < p.Images; j++ {
			n.images = append(n.images, next)
			next++
		}
		layout[i] = n
	}

	w.header()

	// Catalog.
	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if doc.Marked != nil {
		catalog += fmt.Sprintf(" /MarkInfo << /Marked %v >>", *doc.Marked)
	}
	if len(fieldRefs) > 0 {
		catalog += " /AcroForm << /Fields [" + refs(fieldRefs) + "] >>"
	}
	catalog += " >>"
	w.obj(1, catalog)

	// Page tree. MediaBox is inherited by every page.
	kids := make([]int, len(layout))
	for i, n := range layout {
		kids[i] = n.page
	}
	w.obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", refs(kids), len(layout)))

	for i, p := range doc.Pages {
		n := layout[i]

		page := "<< /Type /Page /Parent 2 0 R"
		if n.content != 0 {
			page += fmt.Sprintf(" /Contents %d 0 R", n.content)
		}
		if len(n.images) > 0 {
			page += " /Resources << /XObject <<"
			for j, img := range n.images {
				page += fmt.Sprintf(" /Im%d %d 0 R", j+1, img)
			}
			page += " >> >>"
		} else {
			page += " /Resources << >>"
		}
		if len(n.annots) > 0 {
			page += " /Annots [" + refs(n.annots) + "]"
		}
		page += " >>"
		w.obj(n.page, page)

		if n.content != 0 {
			w.stream(n.content, fmt.Sprintf("<< /Length %d >>", p.ContentSize), contentFiller(p.ContentSize))
		}
		for j, num := range n.widgets {
			// Text fields require a default appearance string to
			// validate.
			w.obj(num, fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Tx /T (field%d-%d) /DA (/Helv 0 Tf 0 g) /Rect [%d 700 %d 720] /F 4 >>",
				i+1, j+1, 10+j*110, 100+j*110))
		}
		for j := 0; j < p.TextAnnots; j++ {
			num := n.annots[len(n.widgets)+j]
			w.obj(num, fmt.Sprintf("<< /Type /Annot /Subtype /Text /Rect [%d 100 %d 120] /Contents (note) >>", 10+j*30, 30+j*30))
		}
		for _, num := range n.images {
			w.stream(num, "<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>", []byte{0x00})
		}
	}

	return w.finish()
}

// contentFiller produces size bytes of harmless content: comment
// lines a content parser will skip.
func contentFiller(size int) []byte {
	line := []byte("% filler content line\n")
	out := bytes.Repeat(line, size/len(line)+1)
	out = out[:size]
	if size > 0 {
		out[size-1] = '\n'
	}
	return out
}

func refs(nums []int) string {
	var b bytes.Buffer
	for i, n := range nums {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d 0 R", n)
	}
	return b.String()
}

// writer accumulates the file body and records each object's byte
// offset for the cross-reference table.
type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *writer) header() {
	w.offsets = map[int]int{}
	w.buf.WriteString("%PDF-1.7\n")
}

func (w *writer) obj(num int, body string) {
	w.offsets[num] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (w *writer) stream(num int, dict string, data []byte) {
	w.offsets[num] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nstream\n", num, dict)
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

func (w *writer) finish() []byte {
	size := len(w.offsets) + 1
	xrefOffset := w.buf.Len()

	fmt.Fprintf(&w.buf, "xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f \n")
	for num := 1; num < size; num++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[num])
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefOffset)
	return w.buf.Bytes()
}
