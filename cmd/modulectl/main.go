// Command modulectl administers the module store from the shell: schema
// setup, the one-time Platforms migration, data audits and dev tokens.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("❌ modulectl failed")
		os.Exit(1)
	}
}
