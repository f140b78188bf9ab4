package experiment

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// Replications log every run at Info; keep test output to warnings.
	// Set DEBUG_TESTS=1 to trace each event: DEBUG_TESTS=1 go test ./sim/experiment/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}
	os.Exit(m.Run())
}
