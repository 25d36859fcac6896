package util

import "github.com/OFFIS-RIT/dramaturgy/internal/db"

// PlayStatusMessage is the user facing text of an import status.
func PlayStatusMessage(status string, errorMessage string) string {
	switch status {
	case db.PlayStatusReady:
		return "ready"
	case db.PlayStatusFailed:
		if errorMessage == "" {
			return "import failed"
		}
		return "import failed: " + errorMessage
	case db.PlayStatusImporting:
		return "importing"
	default:
		return "waiting for import"
	}
}
