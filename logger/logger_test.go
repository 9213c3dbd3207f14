package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armmm.log")
	l, err := New(path, "debug")
	if err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v", l.GetLevel())
	}
	l.WithField("sections", 2).Debug("section attributes set")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "sections=2") {
		t.Errorf("log file = %q", data)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New("", "loud"); err == nil {
		t.Error("New() accepted level loud")
	}
}
