package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kalambet/csvchat/internal/dataset"
)

// Interpreter answers queries against one loaded table. It holds no state
// besides the table and the rules derived from it, so Interpret is safe for
// concurrent use and deterministic for a given input.
type Interpreter struct {
	table   *dataset.Table
	profile Profile
	rules   []Rule
}

// New builds the rule cascade of p over t. It fails when t lacks a column
// the profile requires.
func New(t *dataset.Table, p Profile) (*Interpreter, error) {
	if err := t.Require(p.required()...); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return &Interpreter{table: t, profile: p, rules: p.rules(t)}, nil
}

// Interpret lower-cases text and runs the first rule whose trigger fires.
func (in *Interpreter) Interpret(text string) Result {
	q := strings.ToLower(strings.TrimSpace(text))
	for _, r := range in.rules {
		if !r.fires(q) {
			continue
		}
		var p Params
		if r.Extract != nil {
			var ok bool
			if p, ok = r.Extract(q); !ok {
				return notFound(r.Intent, r.Missing)
			}
		}
		return r.Handle(p)
	}
	return Result{Intent: Unrecognized, Kind: KindUnrecognized, Message: in.profile.Help}
}

// Rules returns the intents of the cascade in priority order.
func (in *Interpreter) Rules() []Intent {
	out := make([]Intent, len(in.rules))
	for i, r := range in.rules {
		out[i] = r.Intent
	}
	return out
}

// Profile returns the name of the active profile.
func (in *Interpreter) Profile() string { return in.profile.Name }

// Rows returns the number of rows in the loaded table.
func (in *Interpreter) Rows() int { return in.table.Len() }

// Metadata returns the distinct values of the profile's metadata columns,
// keyed by their plural names (zones, crops, ...).
func (in *Interpreter) Metadata() map[string][]string {
	out := make(map[string][]string, len(in.profile.Metadata))
	for _, m := range in.profile.Metadata {
		out[m.Key] = in.table.UniqueValues(m.Column)
	}
	return out
}

// capture returns the first submatch of re in text.
func capture(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// literals builds a case-insensitive alternation of the given values, tried
// in order. It returns nil for an empty list.
func literals(values []string) *regexp.Regexp {
	if len(values) == 0 {
		return nil
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}

// Open loads the dataset described by src with p's schema, applying any
// header overrides, and builds an Interpreter over it.
func Open(ctx context.Context, src dataset.Source, p Profile, headers map[dataset.Column]string) (*Interpreter, error) {
	t, err := dataset.Open(ctx, src, p.Schema.WithHeaders(headers))
	if err != nil {
		return nil, err
	}
	return New(t, p)
}

// Columns returns the header of the loaded table.
func (in *Interpreter) Columns() []string { return in.table.Header() }
