package cep

import "fmt"

// validate enforces the build-time rules of spec §4.5 and §7:
// EVERY requires Pattern mode and is top-level only; a zero-length chain
// is rejected; min>max is rejected per step/side; a logical group may not
// be the chain's last element if either side is open-ended (max==0,
// meaning unbounded — ambiguous termination).
func (b *Builder) validate() error {
	if len(b.elems) == 0 {
		return newConfigError("Build", "steps", "", fmt.Errorf("pattern chain must have at least one step"))
	}
	if b.every && b.stateType != StateTypePattern {
		return newConfigError("Build", "every", "sequence", fmt.Errorf("EVERY requires StateType Pattern, got Sequence"))
	}
	for i, e := range b.elems {
		if e.simple != nil {
			if err := validateStepConfig(*e.simple); err != nil {
				return wrapStepErr(i, err)
			}
		} else {
			if err := validateStepConfig(e.logical.Left); err != nil {
				return wrapStepErr(i, err)
			}
			if err := validateStepConfig(e.logical.Right); err != nil {
				return wrapStepErr(i, err)
			}
		}
	}
	last := b.elems[len(b.elems)-1]
	if last.logical != nil && last.isOpenEnded() {
		return newValidationError("Build", "terminal", "open-ended logical group",
			fmt.Errorf("a logical group with an unbounded side cannot be the chain's last element"))
	}
	return nil
}

// validateStreamIDs enforces spec §7's "unknown stream id" ConfigError: a
// non-empty registry is treated as the authoritative set of known stream
// ids, and every step/side must reference one of its keys. An empty or
// nil registry means the caller did not supply stream-id information at
// build time, so the check is skipped (spec §6 leaves the registry's
// shape to the surrounding ingress layer).
func (b *Builder) validateStreamIDs(registry StreamRegistry) error {
	if len(registry) == 0 {
		return nil
	}
	check := func(streamID string) error {
		if _, ok := registry[streamID]; !ok {
			return newConfigError("Build", "stream_id", streamID, fmt.Errorf("unknown stream id %q", streamID))
		}
		return nil
	}
	for _, e := range b.elems {
		if e.simple != nil {
			if err := check(e.simple.StreamID); err != nil {
				return err
			}
			continue
		}
		if err := check(e.logical.Left.StreamID); err != nil {
			return err
		}
		if err := check(e.logical.Right.StreamID); err != nil {
			return err
		}
	}
	return nil
}

func validateStepConfig(cfg StepConfig) error {
	if cfg.Min < 0 {
		return fmt.Errorf("step %q: min must be >= 0", cfg.Alias)
	}
	if cfg.Max != 0 && cfg.Max < cfg.Min {
		return fmt.Errorf("step %q: max (%d) must be >= min (%d)", cfg.Alias, cfg.Max, cfg.Min)
	}
	if cfg.StreamID == "" {
		return fmt.Errorf("step %q: stream id is required", cfg.Alias)
	}
	return nil
}

func wrapStepErr(index int, err error) error {
	return newConfigError("Build", "step", fmt.Sprintf("index %d", index), err)
}

// ValidateAggregatorArg enforces spec §4.3's build-time rule: count
// accepts only a bare position reference; sum/avg/min/max/stdDev require
// an attribute reference. hasAttr indicates whether the caller supplied
// one.
func ValidateAggregatorArg(name string, hasAttr bool) error {
	switch name {
	case "count":
		if hasAttr {
			return newValidationError("count", "attribute", "present",
				fmt.Errorf("count accepts only a bare position reference"))
		}
	case "sum", "avg", "min", "max", "stdDev":
		if !hasAttr {
			return newValidationError(name, "attribute", "missing",
				fmt.Errorf("%s requires an attribute reference", name))
		}
	default:
		return newValidationError(name, "name", name, fmt.Errorf("unknown aggregator %q", name))
	}
	return nil
}
