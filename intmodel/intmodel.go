// Package intmodel defines the backend-native model representation: finite
// integer variable domains, sparse float64 constraint rows and a
// floating-point objective.
//
// The representation preserves variable ordering: backend variable index i
// corresponds to transformed-space variable i, which postsolve maps back to
// original-space variable i.
package intmodel

// Variable is a decision variable with a finite integer domain.
type Variable struct {
	Name       string
	LowerBound int64
	UpperBound int64
}

// Constraint is a sparse linear constraint over the integer variables. Bounds
// and coefficients stay in floating point; feasibility is checked up to the
// backend's tolerance.
type Constraint struct {
	Name        string
	LowerBound  float64
	UpperBound  float64
	VarIndex    []int
	Coefficient []float64
}

// Objective is the floating-point objective evaluated on integer solutions.
type Objective struct {
	Maximize bool
	Offset   float64
	// ScalingFactor multiplies the final objective value. Zero is
	// interpreted as one.
	ScalingFactor float64
	VarIndex      []int
	Coefficient   []float64
}

// Value evaluates the objective at the given solution vector.
func (o *Objective) Value(values []int64) float64 {
	obj := o.Offset
	for i, vi := range o.VarIndex {
		obj += o.Coefficient[i] * float64(values[vi])
	}
	if o.ScalingFactor != 0 {
		obj *= o.ScalingFactor
	}
	return obj
}

// Hint is a partial assignment in the backend's integer space.
type Hint struct {
	VarIndex []int
	Value    []int64
}

// Model is the input of a backend factory.
type Model struct {
	Name        string
	Variables   []Variable
	Constraints []Constraint
	Objective   Objective
	Hint        *Hint
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{
		Name:      m.Name,
		Variables: append([]Variable(nil), m.Variables...),
		Objective: Objective{
			Maximize:      m.Objective.Maximize,
			Offset:        m.Objective.Offset,
			ScalingFactor: m.Objective.ScalingFactor,
			VarIndex:      append([]int(nil), m.Objective.VarIndex...),
			Coefficient:   append([]float64(nil), m.Objective.Coefficient...),
		},
		Constraints: make([]Constraint, len(m.Constraints)),
	}
	for i, ct := range m.Constraints {
		cc := ct
		cc.VarIndex = append([]int(nil), ct.VarIndex...)
		cc.Coefficient = append([]float64(nil), ct.Coefficient...)
		c.Constraints[i] = cc
	}
	if m.Hint != nil {
		c.Hint = &Hint{
			VarIndex: append([]int(nil), m.Hint.VarIndex...),
			Value:    append([]int64(nil), m.Hint.Value...),
		}
	}
	return c
}

// VariableBoundChange retightens the domain of an existing variable.
type VariableBoundChange struct {
	Index      int
	LowerBound int64
	UpperBound int64
}

// ObjectiveCoefficientChange replaces the objective coefficient of an
// existing variable.
type ObjectiveCoefficientChange struct {
	Index int
	Value float64
}

// Update is a diff against the base model a backend instance was created
// for. Backends that cannot apply a particular diff in place report so
// through Update returning false; they must not partially apply it.
type Update struct {
	VariableBounds        []VariableBoundChange
	ObjectiveCoefficients []ObjectiveCoefficientChange
	NewVariables          []Variable
	NewConstraints        []Constraint
}

// IsStructural reports whether the update changes the shape of the model.
func (u *Update) IsStructural() bool {
	return len(u.NewVariables) > 0 || len(u.NewConstraints) > 0
}
