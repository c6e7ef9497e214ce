// Package cmdline turns one raw input line into classified commands.
// Tokenization is quote-aware; classification of each token is decided
// by leading-dash syntax alone and never by what exists on disk, so a
// token shaped like a flag can never be mistaken for a filename.
package cmdline

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse errors.
var (
	// ErrUnbalancedQuote is returned when a quoted span never closes.
	// The whole line is rejected and nothing executes.
	ErrUnbalancedQuote = errors.New("unbalanced quote")

	// ErrMissingValue is returned when a named flag sits at the end of
	// the line with no value token to consume.
	ErrMissingValue = errors.New("option requires an argument")
)

// Spec declares how one command's flags are classified.
type Spec struct {
	// Named lists flag names that consume a value, e.g. "n" for head
	// or "name" for find. Both `-n 10` and `-n10` forms are accepted.
	Named []string

	// Numeric additionally accepts the historical `-NUM` shorthand as
	// a value for the first Named entry, as in `head -5 file`.
	Numeric bool
}

// Command is one parsed invocation. Flags holds boolean flags (single
// letters from clusters and long names), Options holds named flags
// with their values, Args holds positionals in order. A Command is
// derived fresh per invocation and never retained.
type Command struct {
	Name    string
	Flags   map[string]bool
	Options map[string]string
	Args    []string
}

// Bool reports whether any of the given boolean flags is set.
func (c Command) Bool(names ...string) bool {
	for _, n := range names {
		if c.Flags[n] {
			return true
		}
	}
	return false
}

// Option returns the value of a named flag.
func (c Command) Option(name string) (string, bool) {
	v, ok := c.Options[name]
	return v, ok
}

// Int returns the integer value of a named flag, or def when the flag
// is absent.
func (c Command) Int(name string, def int) (int, error) {
	v, ok := c.Options[name]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return n, nil
}

const (
	stNone = iota
	stSingle
	stDouble
)

// Split tokenizes line and groups the tokens into commands separated
// by unquoted semicolons. `'…'` spans are fully literal; inside `"…"`
// only `\"` and `\\` escape. Empty commands between separators are
// dropped.
func Split(line string) ([][]string, error) {
	var (
		segments [][]string
		tokens   []string
		cur      strings.Builder
		quoted   bool
		state    = stNone
	)
	flush := func() {
		if cur.Len() > 0 || quoted {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
		quoted = false
	}
	endCommand := func() {
		flush()
		if len(tokens) > 0 {
			segments = append(segments, tokens)
			tokens = nil
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch state {
		case stNone:
			switch r {
			case '\'':
				state = stSingle
				quoted = true
			case '"':
				state = stDouble
				quoted = true
			case ' ', '\t', '\n':
				flush()
			case ';':
				endCommand()
			default:
				cur.WriteRune(r)
			}
		case stSingle:
			if r == '\'' {
				state = stNone
			} else {
				cur.WriteRune(r)
			}
		case stDouble:
			switch r {
			case '"':
				state = stNone
			case '\\':
				if i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\') {
					cur.WriteRune(runes[i+1])
					i++
				} else {
					cur.WriteRune(r)
				}
			default:
				cur.WriteRune(r)
			}
		}
	}
	if state != stNone {
		return nil, ErrUnbalancedQuote
	}
	endCommand()
	return segments, nil
}

// Parse classifies tokens into a Command under spec. tokens[0] is the
// command name. A token starting with `--` is a long flag, optionally
// `--key=value`. A token starting with a single `-` is a cluster of
// boolean letters unless a Named key matches, in which case the
// remainder of the token or the following token is consumed as the
// value. `--` ends flag processing; everything after it is positional.
// A bare `-` or a non-dash token is always positional.
func Parse(tokens []string, spec Spec) (Command, error) {
	cmd := Command{Flags: make(map[string]bool), Options: make(map[string]string)}
	if len(tokens) == 0 {
		return cmd, nil
	}
	cmd.Name = tokens[0]

	// Longest key first so "name" wins over "n" for a token like -name.
	named := append([]string(nil), spec.Named...)
	sort.Slice(named, func(i, j int) bool { return len(named[i]) > len(named[j]) })

	literal := false
	for i := 1; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case literal || t == "-" || !strings.HasPrefix(t, "-"):
			cmd.Args = append(cmd.Args, t)

		case t == "--":
			literal = true

		case strings.HasPrefix(t, "--"):
			body := t[2:]
			if k, v, ok := strings.Cut(body, "="); ok {
				cmd.Options[k] = v
				continue
			}
			if isNamed(spec.Named, body) {
				i++
				if i >= len(tokens) {
					return cmd, fmt.Errorf("%w -- '%s'", ErrMissingValue, body)
				}
				cmd.Options[body] = tokens[i]
				continue
			}
			cmd.Flags[body] = true

		default:
			body := t[1:]
			if spec.Numeric && len(spec.Named) > 0 && allDigits(body) {
				cmd.Options[spec.Named[0]] = body
				continue
			}
			if key, rest, ok := matchNamed(named, body); ok {
				if rest != "" {
					cmd.Options[key] = rest
					continue
				}
				i++
				if i >= len(tokens) {
					return cmd, fmt.Errorf("%w -- '%s'", ErrMissingValue, key)
				}
				cmd.Options[key] = tokens[i]
				continue
			}
			for _, r := range body {
				cmd.Flags[string(r)] = true
			}
		}
	}
	return cmd, nil
}

func isNamed(keys []string, name string) bool {
	for _, k := range keys {
		if k == name {
			return true
		}
	}
	return false
}

func matchNamed(longestFirst []string, body string) (key, rest string, ok bool) {
	for _, k := range longestFirst {
		if strings.HasPrefix(body, k) {
			return k, body[len(k):], true
		}
	}
	return "", "", false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
