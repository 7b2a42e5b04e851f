package hostops

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonwraymond/toolscript/ops"
)

// Text returns greet, upper, lower, title, reverse and concat.
func Text() []ops.Op {
	return []ops.Op{
		{
			Name:        "greet",
			Description: "Build a greeting for a name",
			Params:      []string{"name"},
			Tags:        []string{"text", "string"},
			Func: ops.Unary(func(_ context.Context, name string) (string, error) {
				return "Hello, " + name + "!", nil
			}),
		},
		{
			Name:        "upper",
			Description: "Convert text to upper case",
			Params:      []string{"text"},
			Tags:        []string{"text", "string", "case"},
			Func: ops.Unary(func(_ context.Context, s string) (string, error) {
				return cases.Upper(language.Und).String(s), nil
			}),
		},
		{
			Name:        "lower",
			Description: "Convert text to lower case",
			Params:      []string{"text"},
			Tags:        []string{"text", "string", "case"},
			Func: ops.Unary(func(_ context.Context, s string) (string, error) {
				return cases.Lower(language.Und).String(s), nil
			}),
		},
		{
			Name:        "title",
			Description: "Convert text to title case",
			Params:      []string{"text", "lang"},
			Tags:        []string{"text", "string", "case"},
			Notes:       "lang is an optional BCP 47 tag such as \"en\" or \"nl\"; it defaults to English.",
			Func: func(_ context.Context, args []any) (any, error) {
				s, err := ops.Arg[string](args, 0)
				if err != nil {
					return nil, err
				}
				lang, err := ops.Arg[string](args, 1)
				if err != nil {
					return nil, err
				}
				tag := language.English
				if lang != "" {
					parsed, err := language.Parse(lang)
					if err != nil {
						return nil, &ops.ArgError{Index: 1, Err: err}
					}
					tag = parsed
				}
				return cases.Title(tag).String(s), nil
			},
		},
		{
			Name:        "reverse",
			Description: "Reverse the characters of text",
			Params:      []string{"text"},
			Tags:        []string{"text", "string"},
			Func: ops.Unary(func(_ context.Context, s string) (string, error) {
				r := []rune(s)
				for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
					r[i], r[j] = r[j], r[i]
				}
				return string(r), nil
			}),
		},
		{
			Name:        "concat",
			Description: "Join strings with a separator",
			Params:      []string{"parts", "sep"},
			Tags:        []string{"text", "string", "join"},
			Func: ops.Binary(func(_ context.Context, parts []string, sep string) (string, error) {
				return strings.Join(parts, sep), nil
			}),
		},
	}
}
