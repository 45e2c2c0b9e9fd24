package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

// patientFlags holds the patient selection flags shared by the analysis
// commands.
type patientFlags struct {
	preset  string
	variant string
	values  map[clinical.FeatureID]*float64
}

// addPatientFlags registers --preset, --variant and one flag per feature.
func addPatientFlags(cmd *cobra.Command) *patientFlags {
	p := &patientFlags{values: make(map[clinical.FeatureID]*float64)}
	flags := cmd.Flags()
	for _, spec := range clinical.Standard().List() {
		x := new(float64)
		flags.Float64Var(x, string(spec.ID), spec.Default,
			fmt.Sprintf("%s in %s [%g, %g]", spec.Name, spec.Unit, spec.Min, spec.Max))
		p.values[spec.ID] = x
	}
	flags.StringVar(&p.preset, "preset", "",
		fmt.Sprintf("start from a preset patient (%s)", strings.Join(clinical.PresetNames(), ", ")))
	flags.StringVar(&p.variant, "variant", "", "model variant (baseline, balanced)")
	return p
}

// vector resolves the preset and explicitly set feature flags. Features left
// unset keep the preset's value, or the reference value without a preset.
func (p *patientFlags) vector(cmd *cobra.Command) (clinical.Vector, error) {
	v := clinical.Standard().Reference()
	if p.preset != "" {
		preset, err := clinical.Preset(p.preset)
		if err != nil {
			return nil, err
		}
		v = preset
	}
	for id, x := range p.values {
		if cmd.Flags().Changed(string(id)) {
			v[id] = *x
		}
	}
	return v, nil
}

func (p *patientFlags) variantID() clinical.Variant {
	return clinical.Variant(p.variant)
}

//Personal.AI order the ending
