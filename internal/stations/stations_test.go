package stations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing list: %v", err)
	}
	return path
}

func TestLoadParsesLines(t *testing.T) {
	path := writeList(t, "Palhoça,-27.6,-48.6\nFlorianópolis,-27.59,-48.55\n")

	locs, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("len = %d, want 2", len(locs))
	}
	if locs[0].Name != "Palhoça" || locs[0].Latitude != "-27.6" || locs[0].Longitude != "-48.6" {
		t.Errorf("first location = %+v", locs[0])
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := writeList(t, "\nPalhoça,-27.6,-48.6\n\n")

	locs, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 1 {
		t.Fatalf("len = %d, want 1", len(locs))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := Load(writeList(t, "\n\n"))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadMalformedLine(t *testing.T) {
	_, err := Load(writeList(t, "Palhoça,-27.6\n"))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestPick(t *testing.T) {
	locs, err := Load(writeList(t, "A,1,2\nB,3,4\nC,5,6\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		loc, err := Pick(locs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[loc.Name] = true
	}
	if len(seen) != 3 {
		t.Errorf("500 picks covered %d of 3 locations", len(seen))
	}
}

func TestPickEmpty(t *testing.T) {
	if _, err := Pick(nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
