package config

// Input is a named value collected from the command line. A nil Value means
// the flag or argument was not supplied.
type Input struct {
	Name  string
	Value any
}

// Inputs is an ordered list of command-line inputs.
type Inputs []Input

// Find returns the first input with the given name.
func (in Inputs) Find(name string) (Input, bool) {
	for _, i := range in {
		if i.Name == name {
			return i, true
		}
	}
	return Input{}, false
}

// Value returns the value of the named input, or nil.
func (in Inputs) Value(name string) any {
	i, _ := in.Find(name)
	return i.Value
}

// String returns the named input as a string; non-string values yield "".
func (in Inputs) String(name string) string {
	s, _ := in.Value(name).(string)
	return s
}

// Bool returns the named input as a bool; non-bool values yield false.
func (in Inputs) Bool(name string) bool {
	b, _ := in.Value(name).(bool)
	return b
}

// Set replaces or appends the named input.
func (in Inputs) Set(name string, value any) Inputs {
	for idx := range in {
		if in[idx].Name == name {
			in[idx].Value = value
			return in
		}
	}
	return append(in, Input{Name: name, Value: value})
}
