// Package growth implements the closed family of growth curves used by the
// fitter and the peak locator.
//
// Every curve is a pure function f(x; L, k, x0[, v]) of x, the number of days
// since a chosen day zero. Derivatives are taken by symmetric finite difference
// so that a new family only has to supply f.
package growth

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DerivativeStep is the half-width used for numerical derivatives of a curve
const DerivativeStep = 0.005

// CurveKind identifies a growth curve family
type CurveKind int

const (
	Logistic CurveKind = iota
	GeneralizedLogistic
	Gompertz
	Gaussian
	Linear
	Quadratic
)

// Param indexes a curve parameter inside a parameter vector
type Param int

const (
	ParamL Param = iota
	ParamK
	ParamX0
	ParamV
)

// model is one row of the function table
type model struct {
	name       string
	eval       func(x float64, p Params) float64
	active     []Param
	degenerate bool
}

var models = [...]model{
	Logistic: {
		name: "logistic",
		eval: func(x float64, p Params) float64 {
			return p.L / (1 + math.Exp(-p.K*(x-p.X0)))
		},
		active: []Param{ParamL, ParamK, ParamX0},
	},
	GeneralizedLogistic: {
		name: "generalized_logistic",
		eval: func(x float64, p Params) float64 {
			return p.L * math.Pow(1+math.Exp(-p.K*(x-p.X0)), -1/p.V)
		},
		active: []Param{ParamL, ParamK, ParamX0, ParamV},
	},
	Gompertz: {
		name: "gompertz",
		eval: func(x float64, p Params) float64 {
			return p.L * math.Exp(-math.Exp(-p.K*(x-p.X0)))
		},
		active: []Param{ParamL, ParamK, ParamX0},
	},
	Gaussian: {
		name: "gaussian",
		eval: func(x float64, p Params) float64 {
			return p.L * (1 + math.Erf(p.K*(x-p.X0))) / 2
		},
		active: []Param{ParamL, ParamK, ParamX0},
	},
	Linear: {
		name: "linear",
		eval: func(x float64, p Params) float64 {
			return p.K * (x - p.X0)
		},
		active:     []Param{ParamK, ParamX0},
		degenerate: true,
	},
	Quadratic: {
		name: "quadratic",
		eval: func(x float64, p Params) float64 {
			d := x - p.X0
			return p.K * d * d
		},
		active:     []Param{ParamK, ParamX0},
		degenerate: true,
	},
}

// Kinds lists every supported curve kind
func Kinds() []CurveKind {
	kinds := make([]CurveKind, len(models))
	for i := range models {
		kinds[i] = CurveKind(i)
	}
	return kinds
}

// Valid reports whether k names a supported curve
func (k CurveKind) Valid() bool {
	return k >= 0 && int(k) < len(models)
}

// String returns the wire name of the curve kind
func (k CurveKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("CurveKind(%d)", int(k))
	}
	return models[k].name
}

// Degenerate reports whether the kind belongs to the linear/quadratic family,
// which is validated against wider k and x0 ranges.
func (k CurveKind) Degenerate() bool {
	return k.Valid() && models[k].degenerate
}

// ActiveParams lists the parameters the kind actually uses, in vector order.
func (k CurveKind) ActiveParams() []Param {
	if !k.Valid() {
		return nil
	}
	return append([]Param(nil), models[k].active...)
}

// ParseCurveKind resolves a curve name. Matching ignores case, dashes and spaces.
func ParseCurveKind(name string) (CurveKind, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "erf":
		return Gaussian, nil
	case "generalised_logistic", "richards":
		return GeneralizedLogistic, nil
	}
	for i, m := range models {
		if m.name == norm {
			return CurveKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown curve kind: %s", name)
}

// MarshalJSON encodes the kind by name
func (k CurveKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid curve kind: %d", int(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name
func (k *CurveKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("curve kind must be a string: %w", err)
	}
	parsed, err := ParseCurveKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Params are the parameters of one curve. L is the asymptotic maximum, K the
// steepness, X0 the midpoint and V the shape exponent of the generalized
// logistic; V is zero for every other kind.
type Params struct {
	Kind CurveKind `json:"kind"`
	L    float64   `json:"l"`
	K    float64   `json:"k"`
	X0   float64   `json:"x0"`
	V    float64   `json:"v,omitempty"`
}

// NewParams builds parameters for kind, dropping v unless the kind uses it.
func NewParams(kind CurveKind, l, k, x0, v float64) Params {
	return Params{Kind: kind, L: l, K: k, X0: x0, V: v}.Normalize()
}

// Normalize zeroes V for kinds that do not use it and defaults V to 1 for the
// generalized logistic, where v=1 reduces to the plain logistic.
func (p Params) Normalize() Params {
	if p.Kind == GeneralizedLogistic {
		if p.V == 0 {
			p.V = 1
		}
		return p
	}
	p.V = 0
	return p
}

// Get returns one parameter by index
func (p Params) Get(i Param) float64 {
	switch i {
	case ParamL:
		return p.L
	case ParamK:
		return p.K
	case ParamX0:
		return p.X0
	case ParamV:
		return p.V
	}
	return math.NaN()
}

// With returns a copy with one parameter replaced
func (p Params) With(i Param, v float64) Params {
	switch i {
	case ParamL:
		p.L = v
	case ParamK:
		p.K = v
	case ParamX0:
		p.X0 = v
	case ParamV:
		p.V = v
	}
	return p
}

// Vector packs the kind's active parameters
func (p Params) Vector() []float64 {
	active := models[p.Kind].active
	vec := make([]float64, len(active))
	for i, idx := range active {
		vec[i] = p.Get(idx)
	}
	return vec
}

// FromVector unpacks a vector produced by Vector
func (p Params) FromVector(vec []float64) Params {
	for i, idx := range models[p.Kind].active {
		if i < len(vec) {
			p = p.With(idx, vec[i])
		}
	}
	return p
}

// Evaluate returns f(x) for the curve described by p.
func Evaluate(p Params, x float64) float64 {
	if !p.Kind.Valid() {
		return math.NaN()
	}
	return models[p.Kind].eval(x, p)
}

// Derivative returns f'(x) by symmetric difference with DerivativeStep.
func Derivative(p Params, x float64) float64 {
	h := DerivativeStep
	return (Evaluate(p, x+h) - Evaluate(p, x-h)) / (2 * h)
}

// SecondDerivative returns f''(x) as the symmetric difference of Derivative.
func SecondDerivative(p Params, x float64) float64 {
	h := DerivativeStep
	return (Derivative(p, x+h) - Derivative(p, x-h)) / (2 * h)
}
