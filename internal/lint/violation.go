package lint

import "fmt"

// Kind classifies a violation by the category of problem it reports.
type Kind string

const (
	// KindStructural marks extension cycles, which make any further
	// extension-chain analysis meaningless for the tables involved.
	KindStructural Kind = "structural"
	// KindRedundancy marks non-minimal extension edges.
	KindRedundancy Kind = "redundancy"
	// KindUniqueness marks duplicate column names across an extension chain.
	KindUniqueness Kind = "uniqueness"
	// KindCompatibility marks foreign key column count or type mismatches.
	KindCompatibility Kind = "compatibility"
	// KindResolution marks foreign keys without a backing unique index or
	// primary key on the referenced table.
	KindResolution Kind = "resolution"
	// KindNaming marks naming convention problems.
	KindNaming Kind = "naming"
	// KindConstraint marks structural hygiene problems outside the
	// extension graph: missing primary keys, duplicate constraints.
	KindConstraint Kind = "constraint"
)

// Violation is a single rule failure tied to a specific schema entity.
// Violations are plain values: they never reference mutable state and can
// be collected independently of evaluation order.
type Violation struct {
	Rule       string `yaml:"rule"`
	Kind       Kind   `yaml:"kind"`
	Table      string `yaml:"table"`
	Object     string `yaml:"object,omitempty"`
	Message    string `yaml:"message"`
	Resolution string `yaml:"resolution,omitempty"`
}

func (v Violation) String() string {
	s := fmt.Sprintf("[%s] %s: %s", v.Rule, v.Table, v.Message)
	if v.Resolution != "" {
		s += "\n  resolution: " + v.Resolution
	}
	return s
}

// Result is the outcome of one validation run: either valid, or the
// complete ordered list of violations found.
type Result struct {
	Violations []Violation `yaml:"violations"`
}

// Valid reports whether the schema passed every registered rule.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}
