package versioneer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
RubyGems versions and requirements semantic parsing implementation.

Gem versions are dot-separated segment lists where a segment is either a
number or a word ('2.4.0', '2.5.0.dev', '1.0.0.rc.1'). A word segment marks
the version as a prerelease and sorts below any number, so '2.5.0.dev'
orders before '2.5.0'.
*/

// gemOprFunc represents gem requirement operator check function.
// It returns true if the version is satisfied by the requirement.
type gemOprFunc func(v *GemVersion, c gemConstraint) bool

// gemConfig is used to store gem parser configuration.
type gemConfig struct {
	operators              map[string]gemOprFunc // List of supported requirement operators mapped to check functions (e.g. '>=')
	versionRgx             string                // Gem version regexp (e.g. 1.2.3.rc.1)
	segmentRgxCompiled     *regexp.Regexp        // Compiled segment-scanning regexp
	constraintsRgxCompiled *regexp.Regexp        // Compiled operator+version regexp
	versionRgxCompiled     *regexp.Regexp        // Compiled version regexp
}

// gemCfg is a global gem parser configuration.
var gemCfg gemConfig

// Gem parser config initialization and expressions compiling.
func init() {
	gemCfg.versionRgx = `[0-9]+(\.[0-9A-Za-z]+)*`
	// Supported gem requirement operators
	gemCfg.operators = map[string]gemOprFunc{
		"":   gemConstraintEqual,
		"=":  gemConstraintEqual,
		"!=": gemConstraintNotEqual,
		">":  gemConstraintGreaterThan,
		"<":  gemConstraintLessThan,
		">=": gemConstraintGreaterThanEqual,
		"<=": gemConstraintLessThanEqual,
		"~>": gemConstraintPessimistic,
	}

	// Convert all existing operators into escaped regex words,
	// longest first so '>=' wins over '>'.
	ops := []string{">=", "<=", "~>", "!=", ">", "<", "=", ""}
	escaped := make([]string, 0, len(ops))
	for _, op := range ops {
		escaped = append(escaped, regexp.QuoteMeta(op))
	}
	gemCfg.constraintsRgxCompiled = regexp.MustCompile(fmt.Sprintf(`^\s*(%s)\s*(%s)\s*$`, strings.Join(escaped, "|"), gemCfg.versionRgx))
	gemCfg.versionRgxCompiled = regexp.MustCompile(`^\s*` + gemCfg.versionRgx + `\s*$`)
	gemCfg.segmentRgxCompiled = regexp.MustCompile(`[0-9]+|[A-Za-z]+`)
}

// gemSegment is one parsed version segment: a number or a word, never both.
type gemSegment struct {
	num  int
	word string
}

// isWord reports whether the segment is alphabetic (a prerelease marker).
func (s gemSegment) isWord() bool {
	return s.word != ""
}

// compareSegments compares two segment lists RubyGems-style: missing
// trailing segments count as zero, words sort below numbers, words compare
// lexically.
func compareSegments(a, b []gemSegment) int {
	limit := len(a)
	if len(b) > limit {
		limit = len(b)
	}
	zero := gemSegment{}
	for i := 0; i < limit; i++ {
		l, r := zero, zero
		if i < len(a) {
			l = a[i]
		}
		if i < len(b) {
			r = b[i]
		}
		switch {
		case l.isWord() && !r.isWord():
			return -1
		case !l.isWord() && r.isWord():
			return 1
		case l.isWord():
			if c := strings.Compare(l.word, r.word); c != 0 {
				return c
			}
		default:
			if l.num != r.num {
				if l.num < r.num {
					return -1
				}
				return 1
			}
		}
	}
	return 0
}

func gemConstraintEqual(v *GemVersion, c gemConstraint) bool {
	return v.Compare(c.ver) == 0
}

func gemConstraintNotEqual(v *GemVersion, c gemConstraint) bool {
	return !gemConstraintEqual(v, c)
}

func gemConstraintGreaterThan(v *GemVersion, c gemConstraint) bool {
	return v.Compare(c.ver) > 0
}

func gemConstraintLessThan(v *GemVersion, c gemConstraint) bool {
	return v.Compare(c.ver) < 0
}

func gemConstraintGreaterThanEqual(v *GemVersion, c gemConstraint) bool {
	return v.Compare(c.ver) >= 0
}

func gemConstraintLessThanEqual(v *GemVersion, c gemConstraint) bool {
	return v.Compare(c.ver) <= 0
}

// gemConstraintPessimistic implements '~>': at least the given version,
// below the next release of its second-to-last segment ('~> 2.3.1' allows
// '>= 2.3.1, < 2.4').
func gemConstraintPessimistic(v *GemVersion, c gemConstraint) bool {
	if v.Compare(c.ver) < 0 {
		return false
	}
	return v.Compare(c.ver.bump()) < 0
}

// NewGemVersion constructs ready-to-use gem Version instance.
func NewGemVersion(value string) (Version, error) {
	v, err := newGemVersion(value)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func newGemVersion(value string) (*GemVersion, error) {
	if !gemCfg.versionRgxCompiled.MatchString(value) {
		return nil, fmt.Errorf("version '%s' is not supported", value)
	}

	raw := gemCfg.segmentRgxCompiled.FindAllString(strings.ToLower(value), -1)
	segments := make([]gemSegment, 0, len(raw))
	prerelease := false
	for _, s := range raw {
		if s[0] >= '0' && s[0] <= '9' {
			n, err := strconv.ParseInt(s, 10, 0)
			if err != nil {
				return nil, fmt.Errorf("segment parse error: %s", err)
			}
			segments = append(segments, gemSegment{num: int(n)})
			continue
		}
		prerelease = true
		segments = append(segments, gemSegment{word: s})
	}

	return &GemVersion{value: value, segments: segments, prerelease: prerelease}, nil
}

// NewGemConstraints constructs ready-to-use gem Constraints instance.
//
// The value is a comma-separated conjunction of unary requirements
// (e.g. '>= 2.3, < 4.0'). A bare version is an exact requirement.
func NewGemConstraints(value string) (Constraints, error) {
	andsRaw := strings.Split(value, ",")
	ands := make([]gemConstraint, len(andsRaw))
	for k, v := range andsRaw {
		constraint, err := parseGemConstraint(v)
		if err != nil {
			return nil, err
		}
		ands[k] = *constraint
	}
	return GemConstraints{value: value, constraints: ands}, nil
}

// parseGemConstraint is a utility function to convert raw string unary requirement into gemConstraint.
func parseGemConstraint(c string) (*gemConstraint, error) {
	matches := gemCfg.constraintsRgxCompiled.FindStringSubmatch(c)
	if matches == nil {
		return nil, fmt.Errorf("constraint not supported: %q", c)
	}

	operator, rawVersion := matches[1], matches[2]

	vrs, err := newGemVersion(rawVersion)
	if err != nil {
		return nil, fmt.Errorf("unable to parse version: %w", err)
	}

	return &gemConstraint{
		compare:  gemCfg.operators[operator],
		operator: operator,
		raw:      rawVersion,
		ver:      vrs,
	}, nil
}

// GemConstraints represent Constraints implementation for RubyGems.
type GemConstraints struct {
	value       string
	constraints []gemConstraint
}

// gemConstraint represent unary requirement (e.g. for '>= 2.3, < 4' one of the constraints is '< 4')
type gemConstraint struct {
	compare  gemOprFunc // func used to compare this requirement with fixed version
	operator string
	raw      string
	ver      *GemVersion
}

// match method checks the version.
func (cct gemConstraint) match(v *GemVersion) bool {
	return cct.compare(v, cct)
}

// Match method validates that the version is in constraints.
func (gc GemConstraints) Match(ver Version) bool {
	gv, ok := ver.(*GemVersion)
	if !ok {
		parsed, err := newGemVersion(ver.Value())
		if err != nil {
			return false
		}
		gv = parsed
	}
	for _, and := range gc.constraints {
		if !and.match(gv) {
			return false
		}
	}
	return true
}

// Specific method reports whether the requirement names exactly one version,
// i.e. it is a single equality requirement ('2.4.0' or '= 2.4.0').
func (gc GemConstraints) Specific() bool {
	if len(gc.constraints) != 1 {
		return false
	}
	op := gc.constraints[0].operator
	return op == "" || op == "="
}

// Value method returns original unmodified raw value of the constraints.
func (gc GemConstraints) Value() string {
	return gc.value
}

// GemVersion represent Version implementation for RubyGems.
type GemVersion struct {
	value      string
	segments   []gemSegment
	prerelease bool
}

// Value method returns original unmodified raw value of the version.
func (gv *GemVersion) Value() string {
	return gv.value
}

// Match method validates that the version is in constraints.
func (gv *GemVersion) Match(b Constraints) bool {
	return b.Match(gv)
}

// Released method reports whether the version is a published build, i.e.
// carries no alphabetic prerelease segment.
func (gv *GemVersion) Released() bool {
	return !gv.prerelease
}

// Compare method defines the RubyGems total order over versions.
func (gv *GemVersion) Compare(b Version) int {
	other, ok := b.(*GemVersion)
	if !ok {
		parsed, err := newGemVersion(b.Value())
		if err != nil {
			return strings.Compare(gv.value, b.Value())
		}
		other = parsed
	}
	return compareSegments(gv.segments, other.segments)
}

// bump returns the smallest version above every release the pessimistic
// operator admits: prerelease segments are stripped, the last segment is
// dropped and the new last one incremented ('2.3.1' -> '2.4').
func (gv *GemVersion) bump() *GemVersion {
	segments := make([]gemSegment, 0, len(gv.segments))
	for _, s := range gv.segments {
		if s.isWord() {
			break
		}
		segments = append(segments, s)
	}
	if len(segments) > 1 {
		segments = segments[:len(segments)-1]
	}
	segments[len(segments)-1].num++

	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = strconv.Itoa(s.num)
	}
	return &GemVersion{value: strings.Join(parts, "."), segments: segments}
}
