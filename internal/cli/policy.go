package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipecut/pipecut/internal/capture"
	"github.com/pipecut/pipecut/internal/split"
)

// PolicyFlags collects the parameter resolution flags shared by the split
// and inspect commands.
type PolicyFlags struct {
	File      string   // CUE policy file
	Default   string   // default policy name
	Transmit  []string // parameters forced to transmit
	Replicate []string // parameters forced to replicate
}

// addPolicyFlags registers the policy flag set on a command.
func addPolicyFlags(cmd *cobra.Command, pf *PolicyFlags) {
	cmd.Flags().StringVar(&pf.File, "policy", "", "CUE policy file")
	cmd.Flags().StringVar(&pf.Default, "default", "", "default multi-use policy (transmit|replicate)")
	cmd.Flags().StringArrayVar(&pf.Transmit, "transmit", nil, "transmit override for a parameter (repeatable)")
	cmd.Flags().StringArrayVar(&pf.Replicate, "replicate", nil, "replicate override for a parameter (repeatable)")
}

// BuildConfig assembles the partitioning config from the policy file and
// the flag overrides. Flags win over the file.
func (pf *PolicyFlags) BuildConfig() (split.Config, error) {
	cfg := split.DefaultConfig()

	if pf.File != "" {
		var err error
		cfg, err = capture.LoadPolicy(pf.File)
		if err != nil {
			return split.Config{}, err
		}
	}

	if pf.Default != "" {
		p, err := split.ParsePolicy(pf.Default)
		if err != nil {
			return split.Config{}, err
		}
		cfg.Default = p
	}

	for _, param := range pf.Transmit {
		if containsParam(pf.Replicate, param) {
			return split.Config{}, fmt.Errorf("parameter %q forced to both transmit and replicate", param)
		}
	}
	if len(pf.Transmit)+len(pf.Replicate) > 0 && cfg.Overrides == nil {
		cfg.Overrides = make(map[string]split.Policy)
	}
	for _, param := range pf.Transmit {
		cfg.Overrides[param] = split.PolicyTransmit
	}
	for _, param := range pf.Replicate {
		cfg.Overrides[param] = split.PolicyReplicate
	}

	return cfg, nil
}

func containsParam(list []string, param string) bool {
	for _, p := range list {
		if p == param {
			return true
		}
	}
	return false
}
