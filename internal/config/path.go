package config

import (
	"fmt"
	"strings"
)

const (
	pathSeparator = "."
	quote         = `"`
)

// ParsePath splits a dotted configuration path into atomic key tokens.
//
// A segment wrapped in double quotes is a single key even when it contains
// the separator, so `projects."api.v2".sourceRoot` yields
// ["projects", "api.v2", "sourceRoot"]. A quote anywhere other than the
// start or end of a quoted key, an unterminated quoted key, and an empty
// unquoted segment are all rejected.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty configuration path")
	}

	fragments := strings.Split(path, pathSeparator)
	tokens := make([]string, 0, len(fragments))

	var (
		inQuote bool
		buf     strings.Builder
	)

	for _, fragment := range fragments {
		switch {
		case inQuote:
			closing := strings.HasSuffix(fragment, quote)
			body := fragment
			if closing {
				body = strings.TrimSuffix(fragment, quote)
			}
			if strings.Contains(body, quote) {
				return nil, fmt.Errorf("unexpected quote in path %q", path)
			}
			buf.WriteString(pathSeparator)
			buf.WriteString(body)
			if closing {
				tokens = append(tokens, buf.String())
				buf.Reset()
				inQuote = false
			}

		case strings.HasPrefix(fragment, quote):
			if len(fragment) >= 2 && strings.HasSuffix(fragment, quote) {
				body := fragment[1 : len(fragment)-1]
				if strings.Contains(body, quote) {
					return nil, fmt.Errorf("unexpected quote in path %q", path)
				}
				tokens = append(tokens, body)
				continue
			}
			body := fragment[1:]
			if strings.Contains(body, quote) {
				return nil, fmt.Errorf("unexpected quote in path %q", path)
			}
			buf.WriteString(body)
			inQuote = true

		default:
			if fragment == "" {
				return nil, fmt.Errorf("empty segment in path %q", path)
			}
			if strings.Contains(fragment, quote) {
				return nil, fmt.Errorf("unexpected quote in path %q", path)
			}
			tokens = append(tokens, fragment)
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quoted segment in path %q", path)
	}

	return tokens, nil
}

// FormatPath is the inverse of ParsePath: keys containing the separator are
// quoted. Keys containing a quote cannot be represented.
func FormatPath(tokens []string) (string, error) {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if strings.Contains(tok, quote) {
			return "", fmt.Errorf("key %q contains a quote", tok)
		}
		if tok == "" || strings.Contains(tok, pathSeparator) {
			parts[i] = quote + tok + quote
		} else {
			parts[i] = tok
		}
	}
	return strings.Join(parts, pathSeparator), nil
}

// Lookup walks tree along tokens. It stops at the first missing or
// non-object intermediate and reports false; it never panics on a partial
// chain. A JSON null is treated as absent.
func Lookup(tree map[string]any, tokens []string) (any, bool) {
	var current any = tree
	for _, tok := range tokens {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[tok]
		if !ok || v == nil {
			return nil, false
		}
		current = v
	}
	return current, true
}
