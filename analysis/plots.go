package analysis

import (
	"image/color"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"berkotech.co/penguins/dataset"
)

// SeriesToPlotValues extracts a dataframe column as plotter values,
// dropping missing entries.
func SeriesToPlotValues(df dataframe.DataFrame, col string) plotter.Values {
	s := df.Col(col)
	var v plotter.Values
	for i := 0; i < s.Len(); i++ {
		f := s.Elem(i).Float()
		if math.IsNaN(f) {
			continue
		}
		v = append(v, f)
	}
	return v
}

// SaveHistogram writes a histogram of the named column to path.
func SaveHistogram(df dataframe.DataFrame, col, path string) error {
	v := SeriesToPlotValues(df, col)
	if len(v) == 0 {
		return errors.Errorf("column %q has no values", col)
	}

	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "new plot")
	}
	p.Title.Text = col
	h, err := plotter.NewHist(v, 10)
	if err != nil {
		return errors.Wrap(err, "histogram")
	}
	p.Add(h)
	return errors.Wrap(p.Save(5*vg.Inch, 4*vg.Inch, path), "save plot")
}

var speciesColors = []color.RGBA{
	{R: 255, A: 255},
	{G: 155, A: 255},
	{B: 255, A: 255},
}

// SaveCulmenScatter writes a culmen length/depth scatter colored by
// species to path.
func SaveCulmenScatter(df dataframe.DataFrame, path string) error {
	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "new plot")
	}
	p.Title.Text = "Culmen measurements by species"
	p.X.Label.Text = dataset.ColCulmenLength
	p.Y.Label.Text = dataset.ColCulmenDepth
	p.Add(plotter.NewGrid())

	_, levels := dataset.Codes(df, dataset.ColSpecies)
	length := df.Col(dataset.ColCulmenLength)
	depth := df.Col(dataset.ColCulmenDepth)
	species := df.Col(dataset.ColSpecies)

	for li, level := range levels {
		var pts plotter.XYs
		for i := 0; i < df.Nrow(); i++ {
			if species.Elem(i).String() != level {
				continue
			}
			x := length.Elem(i).Float()
			y := depth.Elem(i).Float()
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			pts = append(pts, plotter.XY{X: x, Y: y})
		}
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return errors.Wrapf(err, "scatter %s", level)
		}
		sc.GlyphStyle.Color = speciesColors[li%len(speciesColors)]
		p.Add(sc)
		p.Legend.Add(level, sc)
	}

	return errors.Wrap(p.Save(6*vg.Inch, 5*vg.Inch, path), "save plot")
}
