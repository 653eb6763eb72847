package standardize

import (
	"context"
	"fmt"
	"regexp"

	"github.com/wdm0006/catfill/pkg/table"
)

type RegexReplace struct {
	Column  string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

// NewRegexReplace compiles pattern up front so a bad expression fails at
// configuration time.
func NewRegexReplace(column, pattern, replace string) (*RegexReplace, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regex_replace %s: %w", column, err)
	}
	return &RegexReplace{Column: column, Pattern: pattern, Replace: replace, re: re}, nil
}

func (t *RegexReplace) Name() string { return "regex_replace" }

func (t *RegexReplace) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	re := t.re
	if re == nil {
		var err error
		if re, err = regexp.Compile(t.Pattern); err != nil {
			return nil, err
		}
	}
	return relabel(f, t.Column, func(v string) string { return re.ReplaceAllString(v, t.Replace) }), nil
}
