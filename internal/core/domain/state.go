package domain

import (
	"maps"
	"slices"

	"go.trai.ch/zerr"
)

// ModuleState is the position of a module in the cache run lifecycle.
type ModuleState string

const (
	// StateUnknown is the state before the checksum comparison.
	StateUnknown ModuleState = "unknown"
	// StateDirty marks a module that must be rebuilt.
	StateDirty ModuleState = "dirty"
	// StateCacheable marks a module whose previous bundle can be reused.
	StateCacheable ModuleState = "cacheable"
	// StateBuilt marks a module whose toolchain build succeeded.
	StateBuilt ModuleState = "built"
	// StateBundleReady marks a module with a merged bundle for every requested SDK.
	StateBundleReady ModuleState = "bundle_ready"
	// StateBundleMissing marks a built module whose product could not be located.
	StateBundleMissing ModuleState = "bundle_missing"
	// StatePruned marks a module removed from the project in favor of its bundle.
	StatePruned ModuleState = "pruned"
	// StateKeptAsSource marks a module left in the project as source.
	StateKeptAsSource ModuleState = "kept_as_source"
)

// IsTerminal reports whether the state ends the module's run.
func (s ModuleState) IsTerminal() bool {
	return s == StatePruned || s == StateKeptAsSource
}

func isAllowedTransition(from, to ModuleState) bool {
	switch from {
	case StateUnknown:
		return to == StateDirty || to == StateCacheable
	case StateDirty:
		return to == StateBuilt
	case StateBuilt:
		return to == StateBundleReady || to == StateBundleMissing
	case StateCacheable, StateBundleReady:
		return to == StatePruned || to == StateKeptAsSource
	case StateBundleMissing:
		return to == StateKeptAsSource
	default:
		return false
	}
}

// ModuleStates tracks the state of every module taking part in a run.
type ModuleStates struct {
	states map[string]ModuleState
}

// NewModuleStates creates a tracker with every named module in StateUnknown.
func NewModuleStates(names []string) *ModuleStates {
	s := &ModuleStates{states: make(map[string]ModuleState, len(names))}
	for _, name := range names {
		s.states[name] = StateUnknown
	}
	return s
}

// Get returns the current state of a module.
func (s *ModuleStates) Get(name string) (ModuleState, bool) {
	st, ok := s.states[name]
	return st, ok
}

// Transition moves a module to a new state.
// It fails if the module is unknown or the transition is not allowed.
func (s *ModuleStates) Transition(name string, to ModuleState) error {
	cur, ok := s.states[name]
	if !ok {
		return zerr.With(zerr.Wrap(ErrUnknownModule, "module is not tracked"), "module", name)
	}
	if !isAllowedTransition(cur, to) {
		err := zerr.With(zerr.Wrap(ErrInvalidTransition, "disallowed module transition"), "module", name)
		err = zerr.With(err, "from", string(cur))
		return zerr.With(err, "to", string(to))
	}
	s.states[name] = to
	return nil
}

// In returns the sorted names of the modules currently in any of the given states.
func (s *ModuleStates) In(states ...ModuleState) []string {
	var out []string
	for name, st := range s.states {
		if slices.Contains(states, st) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Snapshot returns a copy of all module states.
func (s *ModuleStates) Snapshot() map[string]ModuleState {
	return maps.Clone(s.states)
}
