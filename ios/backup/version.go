package backup

import (
	"fmt"

	"github.com/Masterminds/semver"
)

// Manifest.plist versions 9.x and 10.x are the formats written by iTunes, Finder and
// idevicebackup2 for current devices. Other versions are patched all the same,
// this package never migrates between backup formats.
var (
	minKnownFormat = semver.MustParse("9.0")
	maxKnownMajor  = int64(10)
)

// IsKnownFormat reports whether a Manifest.plist Version is one of the backup formats
// this package has been used with.
func IsKnownFormat(version string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("IsKnownFormat: could not parse backup version '%s': %w", version, err)
	}
	return !v.LessThan(minKnownFormat) && v.Major() <= maxKnownMajor, nil
}
