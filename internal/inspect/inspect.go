// Package inspect extracts the structural signals that drive
// remediation pricing: per-page widget annotation counts, raw content
// stream sizes, XObject resource counts, and the document-level
// tagging flag.
package inspect

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/accessibleworks/scopescan/models"
)

// ErrDocumentUnreadable marks input that cannot be parsed as a PDF at
// all. It is fatal for the document; callers in batch mode skip and
// report, never fabricate an empty result.
var ErrDocumentUnreadable = errors.New("document unreadable")

// Inspect parses a PDF and returns its tagging flag plus one
// PageSignal per page, ordered by page number.
//
// Signal extraction is fail-safe: a page whose annotations, content
// stream, or resources cannot be read contributes zeros for the
// unreadable signal rather than failing the page. Missing structure
// metadata reads as untagged, the worse-pricing case. Only a document
// that cannot be opened fails, with ErrDocumentUnreadable.
func Inspect(data []byte) (bool, []models.PageSignal, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}

	tagged := isTagged(ctx.XRefTable)

	signals := make([]models.PageSignal, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		sig := models.PageSignal{PageNumber: pageNr}
		pageDict, _, inhPAttrs, err := ctx.PageDict(pageNr, false)
		if err == nil && pageDict != nil {
			sig.FormFieldCount = countWidgets(ctx.XRefTable, pageDict)
			sig.ContentByteLength = contentLength(ctx.XRefTable, pageDict)
			if inhPAttrs != nil {
				sig.ImageCount = countXObjects(ctx.XRefTable, inhPAttrs.Resources)
			}
		}
		signals = append(signals, sig)
	}

	return tagged, signals, nil
}

// isTagged reports whether the catalog's MarkInfo dict declares
// Marked true. Any missing or unreadable link in that chain reads as
// untagged.
func isTagged(xref *model.XRefTable) bool {
	rootDict, err := xref.Catalog()
	if err != nil || rootDict == nil {
		return false
	}
	obj, found := rootDict.Find("MarkInfo")
	if !found {
		return false
	}
	markInfo, err := xref.DereferenceDict(obj)
	if err != nil || markInfo == nil {
		return false
	}
	marked, found := markInfo.Find("Marked")
	if !found {
		return false
	}
	marked, err = xref.Dereference(marked)
	if err != nil {
		return false
	}
	b, ok := marked.(types.Boolean)
	return ok && b.Value()
}

// countWidgets counts annotations on the page whose subtype is
// Widget, i.e. the visible half of interactive form fields. A missing
// or unreadable Annots array counts as zero.
func countWidgets(xref *model.XRefTable, pageDict types.Dict) int {
	obj, found := pageDict.Find("Annots")
	if !found {
		return 0
	}
	annots, err := xref.DereferenceArray(obj)
	if err != nil {
		return 0
	}

	count := 0
	for _, a := range annots {
		annotDict, err := xref.DereferenceDict(a)
		if err != nil || annotDict == nil {
			continue
		}
		subtype, found := annotDict.Find("Subtype")
		if !found {
			continue
		}
		subtype, err = xref.Dereference(subtype)
		if err != nil {
			continue
		}
		if name, ok := subtype.(types.Name); ok && name.Value() == "Widget" {
			count++
		}
	}
	return count
}

// contentLength sums the declared lengths of the page's content
// streams. The raw stream size is a cheap proxy for visual and table
// density; unreadable streams contribute zero.
func contentLength(xref *model.XRefTable, pageDict types.Dict) int {
	obj, found := pageDict.Find("Contents")
	if !found {
		return 0
	}
	obj, err := xref.Dereference(obj)
	if err != nil {
		return 0
	}

	switch o := obj.(type) {
	case types.StreamDict:
		return int(streamLength(o))
	case types.Array:
		var total int64
		for _, entry := range o {
			entry, err := xref.Dereference(entry)
			if err != nil {
				continue
			}
			if sd, ok := entry.(types.StreamDict); ok {
				total += streamLength(sd)
			}
		}
		return int(total)
	}
	return 0
}

func streamLength(sd types.StreamDict) int64 {
	if sd.StreamLength != nil {
		return *sd.StreamLength
	}
	return int64(len(sd.Raw))
}

// countXObjects counts the entries of the page's XObject resource
// dict. Images dominate XObject use in practice, so the count feeds
// the image signal; an absent resource or XObject dict is zero.
func countXObjects(xref *model.XRefTable, resources types.Dict) int {
	if resources == nil {
		return 0
	}
	obj, found := resources.Find("XObject")
	if !found {
		return 0
	}
	xObjects, err := xref.DereferenceDict(obj)
	if err != nil || xObjects == nil {
		return 0
	}
	return len(xObjects)
}
