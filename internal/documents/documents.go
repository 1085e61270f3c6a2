// Package documents acquires document bytes from their source and
// rejects payloads that are not PDFs before the inspector sees them.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/accessibleworks/scopescan/models"
)

// ErrNotPDF marks payloads whose magic bytes identify something other
// than a PDF.
var ErrNotPDF = errors.New("not a PDF document")

// IsPDF checks the %PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// GetData retrieves document bytes from a source (disk path or URL)
// and verifies they look like a PDF.
func GetData(ctx context.Context, sourceInfo models.SourceInfo) ([]byte, error) {
	var data []byte
	var err error

	switch {
	case sourceInfo.Path != "":
		data, err = GetFromFile(sourceInfo.Path)
	case sourceInfo.URL != "":
		data, err = GetFromURL(ctx, sourceInfo.URL)
	default:
		return nil, errors.New("no document source provided")
	}
	if err != nil {
		return nil, err
	}

	if !IsPDF(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, describeSource(sourceInfo))
	}
	return data, nil
}

// GetFromFile reads document bytes from disk.
func GetFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// GetFromURL fetches document bytes from a URL.
func GetFromURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func describeSource(sourceInfo models.SourceInfo) string {
	if sourceInfo.Path != "" {
		return sourceInfo.Path
	}
	return sourceInfo.URL
}
