package inspect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/accessibleworks/scopescan/internal/testpdf"
)

func TestInspectSignals(t *testing.T) {
	data := testpdf.Build(testpdf.Doc{
		Marked: testpdf.Bool(true),
		Pages: []testpdf.Page{
			{},                                                        // bare page
			{Widgets: 3, ContentSize: 20000, Images: 3},               // heavy page
			{TextAnnots: 2, ContentSize: 500, Images: 1},              // annotated but simple
			{Widgets: 1, TextAnnots: 1, ContentSize: 15000, Images: 2}, // at thresholds
		},
	})

	tagged, signals, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !tagged {
		t.Error("expected tagged document")
	}
	if len(signals) != 4 {
		t.Fatalf("expected 4 signals, got %d", len(signals))
	}

	for i, sig := range signals {
		if sig.PageNumber != i+1 {
			t.Errorf("signal %d has page number %d", i, sig.PageNumber)
		}
	}

	if s := signals[0]; s.FormFieldCount != 0 || s.ContentByteLength != 0 || s.ImageCount != 0 {
		t.Errorf("bare page signal = %+v, want zeros", s)
	}
	if s := signals[1]; s.FormFieldCount != 3 || s.ContentByteLength != 20000 || s.ImageCount != 3 {
		t.Errorf("heavy page signal = %+v, want 3/20000/3", s)
	}
	// Text annotations are not form widgets.
	if s := signals[2]; s.FormFieldCount != 0 || s.ContentByteLength != 500 || s.ImageCount != 1 {
		t.Errorf("simple page signal = %+v, want 0/500/1", s)
	}
	if s := signals[3]; s.FormFieldCount != 1 || s.ContentByteLength != 15000 || s.ImageCount != 2 {
		t.Errorf("threshold page signal = %+v, want 1/15000/2", s)
	}
}

// Generated form fields must survive pdfcpu's validation pass, not
// just parse: a widget-heavy document is the one case where fixture
// breakage would silently take the form-field signal out of coverage.
func TestInspectFormDocumentValidates(t *testing.T) {
	data := testpdf.Build(testpdf.Doc{
		Pages: []testpdf.Page{
			{Widgets: 3, ContentSize: 20000, Images: 3},
		},
	})

	_, signals, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect rejected a form-bearing document: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if s := signals[0]; s.FormFieldCount != 3 || s.ContentByteLength != 20000 || s.ImageCount != 3 {
		t.Errorf("signal = %+v, want 3/20000/3", s)
	}
}

func TestInspectUntagged(t *testing.T) {
	tests := []struct {
		name   string
		marked *bool
	}{
		{"no MarkInfo", nil},
		{"Marked false", testpdf.Bool(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testpdf.Build(testpdf.Doc{
				Marked: tt.marked,
				Pages:  []testpdf.Page{{ContentSize: 100}},
			})
			tagged, signals, err := Inspect(data)
			if err != nil {
				t.Fatalf("Inspect failed: %v", err)
			}
			if tagged {
				t.Error("expected untagged document")
			}
			if len(signals) != 1 {
				t.Errorf("expected 1 signal, got %d", len(signals))
			}
		})
	}
}

func TestInspectUnreadable(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"not a pdf", []byte("this is not a PDF")},
		{"truncated header", []byte("%PDF-1.7\ngarbage")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, signals, err := Inspect(tt.data)
			if err == nil {
				t.Fatal("expected error for unreadable document")
			}
			if !errors.Is(err, ErrDocumentUnreadable) {
				t.Errorf("expected ErrDocumentUnreadable, got: %v", err)
			}
			if signals != nil {
				t.Error("unreadable documents must not produce signals")
			}
		})
	}
}

// TestInspectSamples runs the inspector over any PDFs dropped into the
// samples directory, checking only structural invariants.
func TestInspectSamples(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "samples", "*.pdf"))
	if err != nil {
		t.Fatalf("failed to list sample PDFs: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no sample PDFs found in samples directory")
	}

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read %s: %v", path, err)
			}

			_, signals, err := Inspect(data)
			if err != nil {
				t.Fatalf("Inspect failed: %v", err)
			}
			for i, sig := range signals {
				if sig.PageNumber != i+1 {
					t.Errorf("signal %d has page number %d", i, sig.PageNumber)
				}
				if sig.FormFieldCount < 0 || sig.ContentByteLength < 0 || sig.ImageCount < 0 {
					t.Errorf("negative signal on page %d: %+v", sig.PageNumber, sig)
				}
			}
		})
	}
}
