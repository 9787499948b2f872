package config

type resolveOptions struct {
	overrideKey string
	inputs      Inputs
	fallback    any
}

// ResolveOption customizes a single Resolve call.
type ResolveOption func(*resolveOptions)

// WithOverride makes the command-line input named key, when present with a
// non-nil value, win over everything in the configuration.
func WithOverride(key string, inputs Inputs) ResolveOption {
	return func(o *resolveOptions) {
		o.overrideKey = key
		o.inputs = inputs
	}
}

// WithDefault sets the value returned when neither the project nor the
// global tree define the path.
func WithDefault(v any) ResolveOption {
	return func(o *resolveOptions) {
		o.fallback = v
	}
}

// Resolve returns the value for path with precedence: command-line override,
// then projects.<project>.<path>, then the global <path>, then the
// fallback. The project lookup is all-or-nothing: if it does not produce a
// value the global tree is consulted from the root.
func Resolve(cfg *Configuration, path, project string, opts ...ResolveOption) any {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.overrideKey != "" {
		if v := o.inputs.Value(o.overrideKey); v != nil {
			return v
		}
	}

	if cfg == nil {
		return o.fallback
	}

	tokens, err := ParsePath(path)
	if err != nil {
		return o.fallback
	}

	if project != "" && cfg.HasProject(project) {
		projectTokens := make([]string, 0, len(tokens)+2)
		projectTokens = append(projectTokens, projectsKey, project)
		projectTokens = append(projectTokens, tokens...)
		if v, ok := Lookup(cfg.tree, projectTokens); ok {
			return v
		}
	}

	if v, ok := Lookup(cfg.tree, tokens); ok {
		return v
	}

	return o.fallback
}

// ResolveString is Resolve for string settings. A resolved value of another
// type yields the fallback when it is a string, otherwise "".
func ResolveString(cfg *Configuration, path, project string, opts ...ResolveOption) string {
	if s, ok := Resolve(cfg, path, project, opts...).(string); ok {
		return s
	}
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	s, _ := o.fallback.(string)
	return s
}

// ResolveBool is Resolve for boolean settings.
func ResolveBool(cfg *Configuration, path, project string, opts ...ResolveOption) bool {
	b, _ := Resolve(cfg, path, project, opts...).(bool)
	return b
}
