package compatibility

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a version string does not follow
// major.minor.patch with an optional pre-release.
var ErrInvalidVersion = errors.New("invalid version")

var semverRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:-([a-zA-Z0-9.-]+))?(?:\+[a-zA-Z0-9.-]+)?$`)

// Version is a parsed semantic version.
type Version struct {
	Major int
	Minor int
	Patch int
	Pre   string
}

// ParseVersion parses a dotted major.minor.patch string with an optional
// pre-release suffix. A leading "v" and a build-metadata suffix are accepted
// and ignored.
func ParseVersion(s string) (Version, error) {
	m := semverRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	return Version{Major: major, Minor: minor, Patch: patch, Pre: m[4]}, nil
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// Compare orders versions by major, minor, patch and then pre-release.
// It returns -1 if v < o, 0 if equal and 1 if v > o.
func (v Version) Compare(o Version) int {
	if c := compareInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, o.Patch); c != 0 {
		return c
	}
	return comparePre(v.Pre, o.Pre)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePre applies the semver pre-release rules: a release outranks any
// pre-release, numeric identifiers compare numerically and rank below
// alphanumeric ones, and a longer identifier list wins over its prefix.
func comparePre(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := comparePreIdent(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(as), len(bs))
}

func comparePreIdent(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return compareInt(an, bn)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// HasNewer reports whether remote strictly exceeds installed. Equal versions
// are not "newer"; an unparseable version on either side is an error rather
// than a silent false.
func HasNewer(installed, remote string) (bool, error) {
	iv, err := ParseVersion(installed)
	if err != nil {
		return false, fmt.Errorf("installed version: %w", err)
	}
	rv, err := ParseVersion(remote)
	if err != nil {
		return false, fmt.Errorf("remote version: %w", err)
	}
	return rv.Compare(iv) > 0, nil
}
