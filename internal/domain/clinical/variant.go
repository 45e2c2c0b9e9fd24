package clinical

import (
	"strings"

	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// Variant selects which calibrated model the engine evaluates.
type Variant string

const (
	// VariantBaseline is the model trained on the original class distribution.
	VariantBaseline Variant = "baseline"
	// VariantBalanced is the model trained on a SMOTE-rebalanced cohort.
	VariantBalanced Variant = "balanced"
)

// DefaultVariant is used when a caller does not name one.
const DefaultVariant = VariantBaseline

var variantAliases = map[string]Variant{
	"baseline": VariantBaseline,
	"nosmote":  VariantBaseline,
	"no-smote": VariantBaseline,
	"no_smote": VariantBaseline,
	"balanced": VariantBalanced,
	"smote":    VariantBalanced,
}

// AllVariants returns every supported variant.
func AllVariants() []Variant {
	return []Variant{VariantBaseline, VariantBalanced}
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// IsValid reports whether v is a supported variant.
func (v Variant) IsValid() bool {
	return v == VariantBaseline || v == VariantBalanced
}

// ParseVariant normalizes a user supplied variant name. An empty string
// yields DefaultVariant.
func ParseVariant(s string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return DefaultVariant, nil
	}
	if v, ok := variantAliases[key]; ok {
		return v, nil
	}
	return "", errors.Newf(errors.ErrCodeUnknownVariant, "variant %q is not supported", s).
		WithDetail("expected one of baseline, balanced")
}

//Personal.AI order the ending
