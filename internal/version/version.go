// Package version parses and totally orders PyPI package version strings.
//
// Versions follow PEP 440 (https://www.python.org/dev/peps/pep-0440/):
// an optional epoch, a dot-separated release segment, an optional
// pre-release, post-release, dev-release, and local version label.
// Parsing is regex-based, the same approach the PEP 440 appendix itself
// documents, with a minor extension to allow a trailing wildcard
// component ("1.2.*") since that shape appears in broadcast constraints.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/blang/semver/v4"
)

// Phases of a pre-release, ordered so that the zero value (no pre-release)
// sorts after all of them.
const (
	PrereleaseAlpha     = -3
	PrereleaseBeta      = -2
	PrereleaseCandidate = -1
	prereleaseNone      = 0
)

// Version holds a parsed PEP 440 version.
//
// The zero Version is not meaningful on its own; always obtain a Version
// through Parse. Version is comparable and may be used as a map key.
type Version struct {
	src string // original source string, for String/Canonical and cache identity

	epoch int
	// PEP 440 allows the release segment to be of unbounded length. Six
	// components is enough for every version observed in practice and
	// keeps the struct directly comparable.
	release       [6]int
	releaseLen    int
	wildcard      bool
	prePhase      int
	preNum        int
	post          bool
	postNum       int
	dev           bool
	devNum        int
	local         string
}

// ErrInvalidVersion is returned by Parse when a string is not a valid
// PEP 440 version.
var ErrInvalidVersion = fmt.Errorf("invalid version")

// https://www.python.org/dev/peps/pep-0440/#appendix-b-parsing-version-strings-with-regular-expressions
// Extended to accept a literal '*' release component, which broadcaster
// constraints and wildcard requirement specifiers use.
var pep440Re = regexp.MustCompile(`^v?(?:(?:(?P<epoch>[0-9]+)!)?(?P<release>[0-9]+(?:\.(?:[0-9]+|\*$))*)(?P<pre>[-_\.]?(?P<pre_l>(a|b|c|rc|alpha|beta|pre|preview))[-_\.]?(?P<pre_n>[0-9]+)?)?(?P<post>(?:-(?P<post_n1>[0-9]+))|(?:[-_\.]?(?P<post_l>post|rev|r)[-_\.]?(?P<post_n2>[0-9]+)?))?(?P<dev>[-_\.]?(?P<dev_l>dev)[-_\.]?(?P<dev_n>[0-9]+)?)?)(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?$`)

var (
	internMu sync.RWMutex
	intern   = map[string]*Version{}
)

// Parse parses s as a PEP 440 version. Versions are interned by their
// original source string: repeated calls with the same string return the
// identical *Version, and the cache is never evicted.
func Parse(s string) (*Version, error) {
	internMu.RLock()
	if v, ok := intern[s]; ok {
		internMu.RUnlock()
		return v, nil
	}
	internMu.RUnlock()

	v, err := parse(s)
	if err != nil {
		return nil, err
	}

	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := intern[s]; ok {
		return existing, nil
	}
	intern[s] = v
	return v, nil
}

// MustParse parses s and panics if it is not a valid version. Intended for
// constants in tests and rule-authoring tooling, never for audit input.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// parse matches s against pep440Re and reads fields out by subexpression
// name rather than numeric position: the regex has several nested
// groups (pre-release wraps its own phase literal, post-release has two
// alternative spellings), and a name survives edits to the regex that
// would silently shift a positional index.
func parse(s string) (*Version, error) {
	m := pep440Re.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	names := pep440Re.SubexpNames()
	group := make(map[string]string, len(names))
	for i, name := range names {
		if name != "" && m[i] != "" {
			group[name] = m[i]
		}
	}

	v := &Version{src: s}

	if epoch, ok := group["epoch"]; ok {
		n, err := strconv.Atoi(epoch)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		v.epoch = n
	}

	for i, part := range strings.Split(group["release"], ".") {
		if part == "*" {
			v.wildcard = true
			break
		}
		if i >= len(v.release) {
			return nil, fmt.Errorf("%w: %q (too many release components)", ErrInvalidVersion, s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		v.release[i] = n
		v.releaseLen = i + 1
	}

	switch group["pre_l"] {
	case "a", "alpha":
		v.prePhase = PrereleaseAlpha
	case "b", "beta":
		v.prePhase = PrereleaseBeta
	case "rc", "c", "pre", "preview":
		v.prePhase = PrereleaseCandidate
	}
	if preN, ok := group["pre_n"]; ok {
		n, err := strconv.Atoi(preN)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		v.preNum = n
	}

	if _, ok := group["post"]; ok {
		v.post = true
		postN := group["post_n1"]
		if postN == "" {
			postN = group["post_n2"]
		}
		if postN != "" {
			n, err := strconv.Atoi(postN)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
			}
			v.postNum = n
		}
	}

	if _, ok := group["dev"]; ok {
		v.dev = true
		if devN, ok := group["dev_n"]; ok {
			n, err := strconv.Atoi(devN)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
			}
			v.devNum = n
		}
	}

	v.local = group["local"]

	return v, nil
}

// String returns the original source string the Version was parsed from.
func (v *Version) String() string {
	if v == nil {
		return "<none>"
	}
	return v.src
}

// Canonical returns the normalized PEP 440 representation, which may
// differ from the original source string (case, redundant zeros, and
// separator punctuation are all normalized away).
func (v *Version) Canonical() string {
	sb := &strings.Builder{}
	if v.epoch > 0 {
		fmt.Fprintf(sb, "%d!", v.epoch)
	}
	for i := 0; i < v.releaseLen; i++ {
		if i > 0 {
			sb.WriteByte('.')
		}
		fmt.Fprintf(sb, "%d", v.release[i])
	}
	if v.wildcard {
		sb.WriteString(".*")
		return sb.String()
	}
	switch v.prePhase {
	case PrereleaseAlpha:
		fmt.Fprintf(sb, "a%d", v.preNum)
	case PrereleaseBeta:
		fmt.Fprintf(sb, "b%d", v.preNum)
	case PrereleaseCandidate:
		fmt.Fprintf(sb, "rc%d", v.preNum)
	}
	if v.post {
		fmt.Fprintf(sb, ".post%d", v.postNum)
	}
	if v.dev {
		fmt.Fprintf(sb, ".dev%d", v.devNum)
	}
	if v.local != "" {
		fmt.Fprintf(sb, "+%s", v.local)
	}
	return sb.String()
}

// Release returns the release-segment tuple (zero padded to six
// components) and how many of those components were explicit in the
// source string. This accessor exists for rule-ingest tooling; the core
// engine never calls it (see Compare).
func (v *Version) Release() (segments [6]int, explicit int) {
	return v.release, v.releaseLen
}

// Semver3 downgrades v to a plain major.minor.patch semver.Version for
// tooling that only understands strict semver (see
// ruleauthor.SemverSummary). It reports false if v carries any PEP
// 440-specific information (epoch, pre/post/dev, local, or a wildcard)
// that a three-component semver cannot represent.
func (v *Version) Semver3() (semver.Version, bool) {
	if v.epoch != 0 || v.wildcard || v.prePhase != prereleaseNone || v.post || v.dev || v.local != "" {
		return semver.Version{}, false
	}
	return semver.Version{
		Major: uint64(v.release[0]),
		Minor: uint64(v.release[1]),
		Patch: uint64(v.release[2]),
	}, true
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than other, following PEP 440 ordering: epoch, then release (zero
// padded), then pre-release phase, then pre-release number, then
// post-release, then dev-release (a dev release always sorts before the
// corresponding non-dev release), then local version (lexicographic).
//
// A wildcard component, once reached, makes the remaining comparison
// always equal: "1.2.*" matches anything with release prefix "1.2".
func Compare(v, other *Version) int {
	if v.epoch != other.epoch {
		return cmpInt(v.epoch, other.epoch)
	}
	for i := 0; i < len(v.release); i++ {
		if (v.wildcard && i >= v.releaseLen) || (other.wildcard && i >= other.releaseLen) {
			return 0
		}
		if v.release[i] != other.release[i] {
			return cmpInt(v.release[i], other.release[i])
		}
	}
	if v.wildcard || other.wildcard {
		return 0
	}
	// A dev release with no pre- or post-release segment ("1.0.dev0")
	// sorts before every pre-release of the same release.
	vPre, otherPre := v.prePhase, other.prePhase
	if v.dev && !v.post && vPre == prereleaseNone {
		vPre = PrereleaseAlpha - 1
	}
	if other.dev && !other.post && otherPre == prereleaseNone {
		otherPre = PrereleaseAlpha - 1
	}
	if vPre != otherPre {
		return cmpInt(vPre, otherPre)
	}
	if v.preNum != other.preNum {
		return cmpInt(v.preNum, other.preNum)
	}
	// Post-release absence sorts before presence (a post-release always
	// sorts after its corresponding plain release), then by number.
	if v.post != other.post {
		if v.post {
			return 1
		}
		return -1
	}
	if v.post && v.postNum != other.postNum {
		return cmpInt(v.postNum, other.postNum)
	}
	if v.dev != other.dev {
		if v.dev {
			return -1
		}
		return 1
	}
	if v.devNum != other.devNum {
		return cmpInt(v.devNum, other.devNum)
	}
	return strings.Compare(v.local, other.local)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// LT, LE, EQ, GE, GT are the only comparisons the core engine needs
// (§4.1): the version algebra is otherwise closed under Compare.
func (v *Version) LT(other *Version) bool { return Compare(v, other) < 0 }
func (v *Version) LE(other *Version) bool { return Compare(v, other) <= 0 }
func (v *Version) EQ(other *Version) bool { return Compare(v, other) == 0 }
func (v *Version) GE(other *Version) bool { return Compare(v, other) >= 0 }
func (v *Version) GT(other *Version) bool { return Compare(v, other) > 0 }

// SortVersions sorts src strings ascending by parsed Version order.
// Strings that fail to parse are dropped, mirroring the "skip invalid
// versions" policy used throughout the engine (§7, InvalidVersion).
func SortVersions(src []string) []string {
	type parsed struct {
		s string
		v *Version
	}
	ps := make([]parsed, 0, len(src))
	for _, s := range src {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		ps = append(ps, parsed{s, v})
	}
	// Insertion sort is adequate: rule-ingest version lists are small
	// (hundreds, not millions) and this keeps the comparator simple.
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && ps[j].v.LT(ps[j-1].v); j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.s
	}
	return out
}
