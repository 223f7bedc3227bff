package cep

import "time"

// Builder assembles a sequence of steps and logical groups into a
// CompiledPattern (spec §4.5, §6). Grounded on the teacher's
// constructor-then-validate shape (pkg/dcb/constructors.go's
// newEventStore, pkg/dcb/decision_model.go's BuildDecisionModel).
type Builder struct {
	stateType StateType
	elems     []chainElem
	within    time.Duration
	every     bool
}

// NewBuilder starts a new pattern builder for the given matching
// discipline (spec §6).
func NewBuilder(stateType StateType) *Builder {
	return &Builder{stateType: stateType}
}

// AddStep appends a simple, count-quantified pattern element to the chain.
func (b *Builder) AddStep(cfg StepConfig) *Builder {
	b.elems = append(b.elems, chainElem{simple: &cfg})
	return b
}

// AddLogicalGroup appends an AND/OR pair occupying the next two chain
// positions (spec §4.4).
func (b *Builder) AddLogicalGroup(kind LogicalKind, left, right StepConfig) *Builder {
	grp := LogicalGroupConfig{Kind: kind, Left: left, Right: right}
	b.elems = append(b.elems, chainElem{logical: &grp})
	return b
}

// SetWithin attaches the chain-wide WITHIN time budget (spec §4.4).
func (b *Builder) SetWithin(d time.Duration) *Builder {
	b.within = d
	return b
}

// SetEvery toggles the EVERY modifier (spec §4.4, §4.5). Only valid for
// StateTypePattern; Build reports a ConfigError otherwise.
func (b *Builder) SetEvery(every bool) *Builder {
	b.every = every
	return b
}

// Build validates the configuration (spec §4.5, §7) and wires the
// pre/post step processors, the router, and the terminal bridge into a
// CompiledPattern. Construction errors are returned synchronously and
// never surface at runtime (spec §7 Propagation policy).
func (b *Builder) Build(registry StreamRegistry, emit EmitFunc) (*CompiledPattern, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if err := b.validateStreamIDs(registry); err != nil {
		return nil, err
	}
	return newCompiledPattern(b, registry, emit)
}
