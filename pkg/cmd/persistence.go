package cmd

import (
	"strings"

	"github.com/givehub/automata/pkg/persistence"
	"github.com/givehub/automata/pkg/persistence/file"
)

var supportedPersistenceProviders = []string{"file"}

// NewPersistence creates the persistence layer for a database URL. Only the
// file provider ships today; the URL scheme keeps the door open for SQL and
// document backends without changing callers.
func NewPersistence(databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
