package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/flashmemo/internal/database"
)

// openDatabase opens the database at path. With mustExist a missing file is
// an error instead of a fresh empty database.
func openDatabase(path string, mustExist bool) (*database.Database, func(), error) {
	if mustExist {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("database file does not exist: %s", path)
		}
	}

	db, err := database.NewDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	return db, closeFn, nil
}
