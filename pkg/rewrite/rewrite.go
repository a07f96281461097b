// Package rewrite maps dataset paths seen by the scanning host onto the
// paths the property service should record, for example when a volume is
// mounted at /data locally but at /mnt/data on the server.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/properties"
)

// Mode selects how a Rule matches.
type Mode string

const (
	// ModePrefix replaces From only when it is a leading prefix of the path.
	ModePrefix Mode = "prefix"

	// ModeReplaceAll replaces every occurrence of From anywhere in the path.
	ModeReplaceAll Mode = "replace-all"
)

// ParseMode parses a mode name. The empty string selects ModePrefix.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePrefix:
		return ModePrefix, nil
	case ModeReplaceAll, "replace_all", "all":
		return ModeReplaceAll, nil
	}
	return "", &errors.ValidationError{
		Field:   "rewrite-mode",
		Value:   s,
		Message: fmt.Sprintf("unknown rewrite mode %q (want %s or %s)", s, ModePrefix, ModeReplaceAll),
	}
}

// Rule rewrites dataset paths starting with From to start with To.
// The zero Rule leaves paths unchanged.
type Rule struct {
	From string
	To   string
	Mode Mode
}

// ParseRule parses a rule of the form "from:to". Only the first colon
// separates the two halves, so To may itself contain colons. The empty
// string yields the zero Rule.
func ParseRule(s string) (Rule, error) {
	if s == "" {
		return Rule{}, nil
	}
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return Rule{}, &errors.ValidationError{
			Field:   "rewrite-path",
			Value:   s,
			Message: "expected <from>:<to>",
		}
	}
	if from == "" {
		return Rule{}, &errors.ValidationError{
			Field:   "rewrite-path",
			Value:   s,
			Message: "prefix to replace must not be empty",
		}
	}
	return Rule{From: from, To: to, Mode: ModePrefix}, nil
}

// IsZero reports whether the rule rewrites nothing.
func (r Rule) IsZero() bool {
	return r.From == ""
}

// String returns the rule in "from:to" form.
func (r Rule) String() string {
	if r.IsZero() {
		return ""
	}
	return r.From + ":" + r.To
}

// Path rewrites a single dataset path.
func (r Rule) Path(p string) string {
	if r.IsZero() {
		return p
	}
	if r.Mode == ModeReplaceAll {
		return strings.ReplaceAll(p, r.From, r.To)
	}
	if rest, ok := strings.CutPrefix(p, r.From); ok {
		return r.To + rest
	}
	return p
}

// Apply returns rewritten copies of props. Internal paths are never
// touched and the input slice is left as it is.
func Apply(props []properties.DatasetProperty, rule Rule) []properties.DatasetProperty {
	out := make([]properties.DatasetProperty, len(props))
	for i, p := range props {
		out[i] = properties.New(rule.Path(p.DatasetPath), p.InternalPath)
	}
	return out
}
