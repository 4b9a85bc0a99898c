package version

import "testing"

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "1.2.0", "abc123", "2024-01-01"
	if got := String(); got != "1.2.0 (abc123, 2024-01-01)" {
		t.Errorf("String() = %q", got)
	}
}
