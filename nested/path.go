package nested

import (
	"strconv"
	"strings"
)

// DefaultSeparator joins and splits composite string keys.
const DefaultSeparator = "|"

// Step is one accessor in a Path: either a mapping key or a sequence index.
type Step struct {
	key     string
	index   int
	indexed bool
}

// Key returns a mapping-key step.
func Key(key string) Step {
	return Step{key: key}
}

// Index returns a sequence-index step.
func Index(i int) Step {
	return Step{index: i, indexed: true}
}

// IsIndex reports whether the step is a sequence index.
func (s Step) IsIndex() bool { return s.indexed }

// Key returns the mapping key; empty for index steps.
func (s Step) Key() string { return s.key }

// Index returns the sequence index; zero for key steps.
func (s Step) Index() int { return s.index }

func (s Step) String() string {
	if s.indexed {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path addresses a node in a nested structure, outermost step first.
type Path []Step

// P builds a Path from steps.
func P(steps ...Step) Path { return steps }

// ParsePath splits a composite key into a Path. Segments consisting only
// of decimal digits become index steps, everything else becomes a key
// step. The separator defaults to DefaultSeparator. An empty string
// parses to an empty path.
func ParsePath(s string, sep ...string) Path {
	if s == "" {
		return nil
	}
	separator := DefaultSeparator
	if len(sep) > 0 {
		separator = sep[0]
	}
	segments := strings.Split(s, separator)
	path := make(Path, 0, len(segments))
	for _, seg := range segments {
		path = append(path, parseStep(seg))
	}
	return path
}

func parseStep(seg string) Step {
	if seg == "" {
		return Key(seg)
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return Key(seg)
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		// Digits overflowing int stay a key.
		return Key(seg)
	}
	return Index(n)
}

// String joins the path into a composite key using the separator, which
// defaults to DefaultSeparator.
func (p Path) String(sep ...string) string {
	separator := DefaultSeparator
	if len(sep) > 0 {
		separator = sep[0]
	}
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Child returns a new path with step appended. The receiver is not
// modified.
func (p Path) Child(step Step) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = step
	return out
}
