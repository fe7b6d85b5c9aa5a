package capture

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/pipecut/pipecut/internal/split"
)

// LoadPolicy reads a policy file from disk and compiles it into a config.
func LoadPolicy(path string) (split.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return split.Config{}, &CompileError{
			Field:   "policy",
			Message: fmt.Sprintf("reading policy file: %v", err),
		}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return split.Config{}, formatCUEError(err)
	}

	pv := v.LookupPath(cue.ParsePath("policy"))
	if !pv.Exists() {
		return split.Config{}, &CompileError{
			Field:   "policy",
			Message: "policy file must define a policy struct",
			Pos:     v.Pos(),
		}
	}
	return CompilePolicy(pv)
}

// CompilePolicy parses a CUE value into a parameter resolution config.
// The CUE value should be the policy struct itself:
//
//	policy: {
//		default: "transmit"
//		overrides: {"shared.scale": "replicate"}
//	}
//
// Both fields are optional; the zero config means transmit everything.
func CompilePolicy(v cue.Value) (split.Config, error) {
	if err := v.Err(); err != nil {
		return split.Config{}, formatCUEError(err)
	}

	var cfg split.Config

	defaultVal := v.LookupPath(cue.ParsePath("default"))
	if defaultVal.Exists() {
		s, err := defaultVal.String()
		if err != nil {
			return split.Config{}, formatCUEError(err)
		}
		p, err := split.ParsePolicy(s)
		if err != nil {
			return split.Config{}, &CompileError{
				Field:   "default",
				Message: err.Error(),
				Pos:     defaultVal.Pos(),
			}
		}
		cfg.Default = p
	}

	overridesVal := v.LookupPath(cue.ParsePath("overrides"))
	if overridesVal.Exists() {
		iter, err := overridesVal.Fields()
		if err != nil {
			return split.Config{}, formatCUEError(err)
		}
		for iter.Next() {
			param := iter.Label()
			s, err := iter.Value().String()
			if err != nil {
				return split.Config{}, formatCUEError(err)
			}
			p, err := split.ParsePolicy(s)
			if err != nil {
				return split.Config{}, &CompileError{
					Field:   fmt.Sprintf("overrides.%s", param),
					Message: err.Error(),
					Pos:     iter.Value().Pos(),
				}
			}
			if cfg.Overrides == nil {
				cfg.Overrides = make(map[string]split.Policy)
			}
			cfg.Overrides[param] = p
		}
	}

	return cfg, nil
}
