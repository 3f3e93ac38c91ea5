package interp

import "sort"

// Scope is the variable store of one execution frame. Every value is a
// string; the last Set for a name wins.
type Scope struct {
	vars map[string]string
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]string)}
}

// NewScopeFrom returns a scope seeded with a copy of vars.
func NewScopeFrom(vars map[string]string) *Scope {
	s := NewScope()
	for k, v := range vars {
		s.vars[k] = v
	}
	return s
}

func (s *Scope) Get(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *Scope) Set(name, value string) {
	s.vars[name] = value
}

func (s *Scope) Len() int {
	return len(s.vars)
}

// Fork returns a full copy of s. Writes to the fork never reach s.
func (s *Scope) Fork() *Scope {
	return NewScopeFrom(s.vars)
}

// Vars returns a copy of the stored variables.
func (s *Scope) Vars() map[string]string {
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// matchOrder returns the non-empty names longest first, ties broken
// lexically, so a scan can take the longest name at each position.
func (s *Scope) matchOrder() []string {
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		if k != "" {
			names = append(names, k)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}
