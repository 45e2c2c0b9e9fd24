package clinical

import (
	"strings"
	"sync"

	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// Catalog provides read-only access to feature metadata.
type Catalog interface {
	// Get returns the FeatureSpec for id, or an ErrCodeUnknownFeature error.
	Get(id FeatureID) (*FeatureSpec, error)
	// Normalize resolves a user supplied name or alias to a FeatureID.
	Normalize(name string) (FeatureID, error)
	// List returns every spec in catalog order.
	List() []*FeatureSpec
	// Clamp returns a copy of v with every catalog feature inside its domain.
	Clamp(v Vector) Vector
	// Reference returns the default patient vector.
	Reference() Vector
}

// InMemoryCatalog is the built-in Catalog.
type InMemoryCatalog struct {
	specs   map[FeatureID]*FeatureSpec
	order   []FeatureID
	aliases map[string]FeatureID
}

var (
	standardOnce    sync.Once
	standardCatalog *InMemoryCatalog
)

// Standard returns the shared catalog of the five model features.
func Standard() *InMemoryCatalog {
	standardOnce.Do(func() {
		standardCatalog = NewCatalog()
	})
	return standardCatalog
}

// NewCatalog builds a catalog populated with the five model features.
func NewCatalog() *InMemoryCatalog {
	c := &InMemoryCatalog{
		specs:   make(map[FeatureID]*FeatureSpec),
		aliases: make(map[string]FeatureID),
	}
	c.init()
	return c
}

func (c *InMemoryCatalog) init() {
	c.add(&FeatureSpec{
		ID:          FeatureCalcium,
		Name:        "Serum Calcium",
		Unit:        "mmol/L",
		Description: "Primary predictor of hypocalcemia",
		Rank:        1,
		Min:         1.5, Max: 3.0, Step: 0.01, Default: 2.26,
		Optimal: map[Variant]Range{
			VariantBaseline: {Low: 1.95, High: 2.41},
			VariantBalanced: {Low: 2.16, High: 2.41},
		},
		Critical: map[Variant]float64{
			VariantBaseline: 1.93,
			VariantBalanced: 2.13,
		},
	}, "ca", "serum_calcium")

	c.add(&FeatureSpec{
		ID:          FeatureBMI,
		Name:        "Body Mass Index",
		Unit:        "kg/m²",
		Description: "Body mass index at surgery",
		Rank:        3,
		Min:         15, Max: 50, Step: 0.1, Default: 28.0,
		Optimal: map[Variant]Range{
			VariantBaseline: {Low: 20.7, High: 26.5},
			VariantBalanced: {Low: 20.7, High: 27.8},
		},
	}, "body_mass_index")

	c.add(&FeatureSpec{
		ID:          FeatureTSH,
		Name:        "Preoperative TSH",
		Unit:        "mIU/L",
		Description: "Thyroid stimulating hormone before surgery",
		Rank:        2,
		Min:         0.1, Max: 10, Step: 0.01, Default: 1.70,
		Optimal: map[Variant]Range{
			VariantBaseline: {Low: 0.997, High: 1.86},
			VariantBalanced: {Low: 0.586, High: 1.54},
		},
	}, "thyrotropin")

	c.add(&FeatureSpec{
		ID:          FeatureAge,
		Name:        "Age at Diagnosis",
		Unit:        "years",
		Description: "Patient age at diagnosis",
		Rank:        4,
		Min:         18, Max: 80, Step: 1, Default: 41,
		Optimal: map[Variant]Range{
			VariantBaseline: {Low: 34, High: 68.2},
			VariantBalanced: {Low: 34, High: 68.2},
		},
	}, "age_at_diagnosis")

	c.add(&FeatureSpec{
		ID:          FeatureMagnesium,
		Name:        "Serum Magnesium",
		Unit:        "mmol/L",
		Description: "Serum magnesium before surgery",
		Rank:        5,
		Min:         0.5, Max: 1.2, Step: 0.01, Default: 0.79,
		Optimal: map[Variant]Range{
			VariantBaseline: {Low: 0.672, High: 0.812},
			VariantBalanced: {Low: 0.628, High: 0.812},
		},
	}, "mg", "serum_magnesium")
}

func (c *InMemoryCatalog) add(spec *FeatureSpec, aliases ...string) {
	c.specs[spec.ID] = spec
	c.order = append(c.order, spec.ID)
	c.aliases[string(spec.ID)] = spec.ID
	for _, a := range aliases {
		c.aliases[a] = spec.ID
	}
}

// Get returns a copy of the spec registered under id.
func (c *InMemoryCatalog) Get(id FeatureID) (*FeatureSpec, error) {
	spec, ok := c.specs[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownFeature, "feature %q is not part of the catalog", string(id))
	}
	clone := *spec
	return &clone, nil
}

// MustGet is Get for ids known at compile time.
func (c *InMemoryCatalog) MustGet(id FeatureID) *FeatureSpec {
	spec, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return spec
}

// Normalize resolves name case-insensitively, accepting dashes for underscores.
func (c *InMemoryCatalog) Normalize(name string) (FeatureID, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if id, ok := c.aliases[key]; ok {
		return id, nil
	}
	return "", errors.Newf(errors.ErrCodeUnknownFeature, "feature %q is not part of the catalog", name)
}

// List returns copies of all specs in catalog order.
func (c *InMemoryCatalog) List() []*FeatureSpec {
	out := make([]*FeatureSpec, 0, len(c.order))
	for _, id := range c.order {
		clone := *c.specs[id]
		out = append(out, &clone)
	}
	return out
}

// Clamp returns a new vector holding exactly the catalog features, each
// clamped into its domain. Missing features take their default.
func (c *InMemoryCatalog) Clamp(v Vector) Vector {
	out := make(Vector, len(c.order))
	for _, id := range c.order {
		spec := c.specs[id]
		x, ok := v[id]
		if !ok {
			x = spec.Default
		}
		out[id] = spec.Clamp(x)
	}
	return out
}

// Reference returns the default vector.
func (c *InMemoryCatalog) Reference() Vector {
	out := make(Vector, len(c.order))
	for _, id := range c.order {
		out[id] = c.specs[id].Default
	}
	return out
}

// ParseVector builds a Vector from a name keyed map, resolving aliases.
// Features absent from raw are left unset.
func (c *InMemoryCatalog) ParseVector(raw map[string]float64) (Vector, error) {
	out := make(Vector, len(raw))
	for name, x := range raw {
		id, err := c.Normalize(name)
		if err != nil {
			return nil, err
		}
		out[id] = x
	}
	return out, nil
}

//Personal.AI order the ending
