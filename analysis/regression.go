package analysis

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"github.com/sajari/regression"

	"berkotech.co/penguins/dataset"
)

// MassFlipperRegression fits body_mass_g as a linear function of
// flipper_length_mm, skipping rows where either value is missing. The
// returned regression exposes Formula and R2.
func MassFlipperRegression(df dataframe.DataFrame) (*regression.Regression, error) {
	mass := df.Col(dataset.ColBodyMass)
	flipper := df.Col(dataset.ColFlipperLength)

	r := new(regression.Regression)
	r.SetObserved(dataset.ColBodyMass)
	r.SetVar(0, dataset.ColFlipperLength)

	n := 0
	for i := 0; i < df.Nrow(); i++ {
		m := mass.Elem(i).Float()
		f := flipper.Elem(i).Float()
		if math.IsNaN(m) || math.IsNaN(f) {
			continue
		}
		r.Train(regression.DataPoint(m, []float64{f}))
		n++
	}
	if n == 0 {
		return nil, errors.New("no rows with both body mass and flipper length")
	}
	if err := r.Run(); err != nil {
		return nil, errors.Wrap(err, "regression")
	}
	return r, nil
}
