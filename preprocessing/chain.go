package preprocessing

import (
	"gonum.org/v1/gonum/mat"
)

// Spec constructs a fresh, unfitted transformer. Cross-validation needs a new
// transformer instance per fold, so preprocessing is configured as a list of
// constructors rather than shared instances.
type Spec func() Transformer

// Chain is an ordered sequence of transformers applied back to back.
type Chain struct {
	steps []Transformer
}

// NewChain instantiates a chain from the given specs.
func NewChain(specs []Spec) *Chain {
	steps := make([]Transformer, len(specs))
	for i, spec := range specs {
		steps[i] = spec()
	}
	return &Chain{steps: steps}
}

// FitTransform fits every step on the (progressively transformed) training
// data and returns the final result.
func (c *Chain) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	out := X
	for _, step := range c.steps {
		var err error
		out, err = step.FitTransform(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Transform applies the already fitted steps in order.
func (c *Chain) Transform(X mat.Matrix) (mat.Matrix, error) {
	out := X
	for _, step := range c.steps {
		var err error
		out, err = step.Transform(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
