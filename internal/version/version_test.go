package version

import (
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestVersionParsesAsSemver(t *testing.T) {
	if _, err := semver.NewVersion(Version); err != nil {
		t.Fatalf("Version %q must stay a valid semver string: %v", Version, err)
	}
}

func TestVersionCanBeOverridden(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	// Simulates build-time ldflags.
	Version = "1.2.3"
	if Version != "1.2.3" {
		t.Fatalf("Version = %q, want 1.2.3", Version)
	}
}

func TestColoredKeepsAllComponents(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc.1"
	got := Colored()
	for _, part := range []string{"1", "2", "3-rc.1"} {
		if !strings.Contains(got, part) {
			t.Errorf("Colored() = %q, missing %q", got, part)
		}
	}

	Version = "dev"
	if Colored() != "dev" {
		t.Errorf("non-dotted versions must pass through, got %q", Colored())
	}
}
