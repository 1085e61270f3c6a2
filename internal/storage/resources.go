package storage

import (
	"fmt"

	"github.com/accessibleworks/scopescan/models"
)

// CalculateResourcePaths generates all available resource URIs for a stored quote.
func CalculateResourcePaths(quoteID string, report *models.DocumentReport) []string {
	resourcePaths := []string{
		fmt.Sprintf("quote://%s", quoteID),
		fmt.Sprintf("quote://%s/pricing", quoteID),
	}

	if len(report.PerPage) > 0 {
		resourcePaths = append(resourcePaths, fmt.Sprintf("quote://%s/pages", quoteID))
	}

	return resourcePaths
}
