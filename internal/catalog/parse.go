package catalog

import (
	"regexp"
	"strconv"
)

var (
	gradePattern = regexp.MustCompile(`^N(\d+)$`)
	ratioPattern = regexp.MustCompile(`^(\d+):(\d+)$`)
)

// MixRatio is a parsed cement:sand mortar proportion.
type MixRatio struct {
	Cement int
	Sand   int
}

// ParseGrade extracts the compressive strength in MPa from a concrete grade
// string such as "N20". It reports false for any value outside the N<integer>
// form; malformed grades disable grade-based behaviour rather than erroring.
func ParseGrade(grade string) (int, bool) {
	m := gradePattern.FindStringSubmatch(grade)
	if m == nil {
		return 0, false
	}
	mpa, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return mpa, true
}

// ParseMortarRatio parses a cement:sand mix string such as "1:3". It reports
// false when the value does not match the <int>:<int> form.
func ParseMortarRatio(ratio string) (MixRatio, bool) {
	m := ratioPattern.FindStringSubmatch(ratio)
	if m == nil {
		return MixRatio{}, false
	}
	cement, err := strconv.Atoi(m[1])
	if err != nil {
		return MixRatio{}, false
	}
	sand, err := strconv.Atoi(m[2])
	if err != nil {
		return MixRatio{}, false
	}
	return MixRatio{Cement: cement, Sand: sand}, true
}
