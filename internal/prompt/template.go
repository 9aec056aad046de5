package prompt

import (
	"fmt"
	"regexp"
)

// placeholderPattern matches {name} substitution points (word characters only).
var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Placeholders returns the unique placeholder names found in content, in
// order of first appearance.
func Placeholders(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// ValidateTemplate checks that the placeholders in content and the declared
// parameters match exactly. Placeholders without a declaration fail with
// MissingParameterError; declarations without a placeholder fail with
// ExtraParameterError. Missing is checked first.
func ValidateTemplate(content string, parameters []string) error {
	declared := make(map[string]struct{}, len(parameters))
	for _, p := range parameters {
		declared[p] = struct{}{}
	}

	found := make(map[string]struct{})
	missing := make(map[string]struct{})
	for _, name := range Placeholders(content) {
		found[name] = struct{}{}
		if _, ok := declared[name]; !ok {
			missing[name] = struct{}{}
		}
	}
	if len(missing) > 0 {
		return &MissingParameterError{Names: sortedKeys(missing)}
	}

	extra := make(map[string]struct{})
	for p := range declared {
		if _, ok := found[p]; !ok {
			extra[p] = struct{}{}
		}
	}
	if len(extra) > 0 {
		return &ExtraParameterError{Names: sortedKeys(extra)}
	}
	return nil
}

// Render substitutes values into content. Every declared parameter must be
// supplied and nothing else; a template with no parameters renders
// unchanged. Substitution is a single pass over the original content, so a
// placeholder-shaped token inside a substituted value is left verbatim.
func Render(content string, parameters []string, values map[string]any) (string, error) {
	declared := make(map[string]struct{}, len(parameters))
	missing := make(map[string]struct{})
	for _, p := range parameters {
		declared[p] = struct{}{}
		if _, ok := values[p]; !ok {
			missing[p] = struct{}{}
		}
	}
	if len(missing) > 0 {
		return "", &MissingParameterError{Names: sortedKeys(missing)}
	}

	extra := make(map[string]struct{})
	for k := range values {
		if _, ok := declared[k]; !ok {
			extra[k] = struct{}{}
		}
	}
	if len(extra) > 0 {
		return "", &ExtraParameterError{Names: sortedKeys(extra)}
	}

	out := placeholderPattern.ReplaceAllStringFunc(content, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := values[name]
		if !ok {
			return m
		}
		return fmt.Sprint(v)
	})
	return out, nil
}
