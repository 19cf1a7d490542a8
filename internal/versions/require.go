package versions

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrIncompatibleVersion is returned when the running build does not satisfy a version constraint
var ErrIncompatibleVersion = errors.New("incompatible solarmap version")

// Require checks version against a semver constraint such as ">= 1.2".
// Development builds are not valid semver and always satisfy the constraint.
func Require(constraint, version string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %q", ErrIncompatibleVersion, version, constraint)
	}
	return nil
}
