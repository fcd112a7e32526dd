package model

import (
	"encoding/gob"
	"math"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Softmax is a multinomial logistic regression classifier trained by
// gradient descent. W has shape (Features+1, Classes); the last input
// row is the bias.
type Softmax struct {
	Features   int
	Classes    int
	LearnRate  float64
	Iterations int
	W          *tensor.Dense
}

func NewSoftmax(features, classes int) *Softmax {
	return &Softmax{
		Features:   features,
		Classes:    classes,
		LearnRate:  0.1,
		Iterations: 1000,
	}
}

// Fit trains the weights on X and integer class labels y. Weights start at
// zero, so training is deterministic for a given input order.
func (m *Softmax) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("empty training set")
	}
	if len(y) != n {
		return errors.New("feature and label counts differ")
	}

	d := m.Features + 1
	xData := make([]float64, n*d)
	yData := make([]float64, n*m.Classes)
	for i, row := range X {
		if len(row) != m.Features {
			return errors.Errorf("row %d has %d features, want %d", i, len(row), m.Features)
		}
		copy(xData[i*d:], row)
		xData[i*d+d-1] = 1 // bias
		c := int(y[i])
		if c < 0 || c >= m.Classes {
			return errors.Errorf("label %v out of range", y[i])
		}
		yData[i*m.Classes+c] = 1
	}

	xT := tensor.FromMat64(mat.NewDense(n, d, xData))
	yT := tensor.FromMat64(mat.NewDense(n, m.Classes, yData))

	g := gorgonia.NewGraph()
	x := gorgonia.NodeFromAny(g, xT, gorgonia.WithName("x"))
	yOneHot := gorgonia.NodeFromAny(g, yT, gorgonia.WithName("y"))
	w := gorgonia.NewMatrix(
		g,
		gorgonia.Float64,
		gorgonia.WithName("w"),
		gorgonia.WithShape(d, m.Classes),
		gorgonia.WithInit(gorgonia.Zeroes()))

	prob := must(gorgonia.SoftMax(must(gorgonia.Mul(x, w))))
	logLik := must(gorgonia.Sum(must(gorgonia.HadamardProd(yOneHot, must(gorgonia.Log(prob)))), 1))
	cost := must(gorgonia.Neg(must(gorgonia.Mean(logLik))))

	if _, err := gorgonia.Grad(cost, w); err != nil {
		return errors.Wrap(err, "backpropagate")
	}

	machine := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(w))
	defer machine.Close()

	solver := gorgonia.NewVanillaSolver(gorgonia.WithLearnRate(m.LearnRate))
	params := []gorgonia.ValueGrad{w}

	for i := 0; i < m.Iterations; i++ {
		if err := machine.RunAll(); err != nil {
			return errors.Wrapf(err, "iteration %d", i)
		}
		if err := solver.Step(params); err != nil {
			return errors.Wrapf(err, "iteration %d", i)
		}
		machine.Reset()
	}

	m.W = w.Value().(*tensor.Dense)
	return nil
}

// Proba returns the class probabilities for each row of X.
func (m *Softmax) Proba(X [][]float64) [][]float64 {
	w := m.W.Data().([]float64)
	d := m.Features + 1
	out := make([][]float64, len(X))
	for i, row := range X {
		scores := make([]float64, m.Classes)
		for c := 0; c < m.Classes; c++ {
			s := w[(d-1)*m.Classes+c] // bias
			for j, v := range row {
				s += w[j*m.Classes+c] * v
			}
			scores[c] = s
		}
		out[i] = softmax(scores)
	}
	return out
}

// Predict returns the most probable class for each row of X.
func (m *Softmax) Predict(X [][]float64) []float64 {
	proba := m.Proba(X)
	out := make([]float64, len(proba))
	for i, p := range proba {
		best := 0
		for c := range p {
			if p[c] > p[best] {
				best = c
			}
		}
		out[i] = float64(best)
	}
	return out
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	sum := 0.0
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Save writes the model to path with gob.
func (m *Softmax) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save model")
	}
	defer f.Close()
	return errors.Wrap(gob.NewEncoder(f).Encode(m), "encode model")
}

// LoadSoftmax reads a model written by Save.
func LoadSoftmax(path string) (*Softmax, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load model")
	}
	defer f.Close()
	var m Softmax
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode model")
	}
	return &m, nil
}

func must(n *gorgonia.Node, err error) *gorgonia.Node {
	if err != nil {
		panic(err)
	}
	return n
}
