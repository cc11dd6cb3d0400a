package persistence_test

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// A .env at the repository root may point TEST_DB_DRIVER and DB_* at a
	// MySQL/TiDB server; without one the tests run on temporary SQLite files.
	paths := []string{
		"../../../.env", // From internal/infrastructure/persistence/ to the module root
		".env",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				logrus.Infof("📁 Loaded .env from %s for tests", p)
				return
			}
		}
	}
}
