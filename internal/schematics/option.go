package schematics

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Option is one schematic option. Nil values are not rendered.
type Option struct {
	Name  string
	Value any
}

// Arg renders the option as a command-line flag: strings and numbers as
// --name=value, booleans as --name or --no-name. The "name" option is
// normalized to kebab case.
func (o Option) Arg() (string, bool) {
	flag := Kebab(o.Name)

	switch v := o.Value.(type) {
	case nil:
		return "", false
	case bool:
		if v {
			return "--" + flag, true
		}
		return "--no-" + flag, true
	case string:
		if o.Name == "name" {
			v = NormalizeName(v)
		}
		return "--" + flag + "=" + v, true
	default:
		return fmt.Sprintf("--%s=%v", flag, v), true
	}
}

// Kebab converts camelCase and spaced identifiers to kebab case.
func Kebab(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
			b.WriteByte('-')
		}
		if unicode.IsSpace(r) || r == '_' {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(r)
	}
	return lower.String(b.String())
}

// NormalizeName turns a project or element name into kebab case while
// keeping snake_case names as they are.
func NormalizeName(s string) string {
	if strings.Contains(s, "_") && !strings.ContainsAny(s, " -") {
		return lower.String(s)
	}
	return Kebab(strings.TrimSpace(s))
}
