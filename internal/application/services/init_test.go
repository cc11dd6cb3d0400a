package services_test

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetLevel(logrus.WarnLevel)

	// Load .env for the optional MySQL run (TEST_DB_DRIVER=mysql).
	// Tests run from internal/application/services/, so walk up to the repo root.
	paths := []string{
		"../../../.env",
		"../../.env",
		".env",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				logrus.Warnf("📁 Loaded .env from %s for tests", p)
				return
			}
		}
	}
}
