package dataset

import (
	"math/rand"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Column names of the penguins file.
const (
	ColSpecies       = "species"
	ColIsland        = "island"
	ColCulmenLength  = "culmen_length_mm"
	ColCulmenDepth   = "culmen_depth_mm"
	ColFlipperLength = "flipper_length_mm"
	ColBodyMass      = "body_mass_g"
	ColSex           = "sex"
)

// NumericColumns are the measurement columns, all of which may be missing.
var NumericColumns = []string{ColCulmenLength, ColCulmenDepth, ColFlipperLength, ColBodyMass}

// MissingCode is the category code assigned to missing values.
const MissingCode = -1

// Load reads the penguins CSV into a dataframe.
func Load(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(df.Err, "read dataset")
	}
	return df, nil
}

func missing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	v := strings.TrimSpace(e.String())
	return v == "" || v == "NA" || v == "NaN"
}

// CategoryCodes assigns an integer code to each distinct value of s, in
// order of first appearance. Missing values code to MissingCode and do not
// produce a level.
func CategoryCodes(s series.Series) ([]float64, []string) {
	codes := make([]float64, s.Len())
	index := map[string]int{}
	var levels []string

	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if missing(e) {
			codes[i] = MissingCode
			continue
		}
		v := e.String()
		c, ok := index[v]
		if !ok {
			c = len(levels)
			index[v] = c
			levels = append(levels, v)
		}
		codes[i] = float64(c)
	}
	return codes, levels
}

// Codes recodes the named column of df.
func Codes(df dataframe.DataFrame, col string) ([]float64, []string) {
	return CategoryCodes(df.Col(col))
}

// SplitIndex partitions [0, n) into train and test index sets. The
// permutation depends only on n and seed, so a fixed seed gives a
// reproducible split.
func SplitIndex(n int, testRatio float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	return perm[nTest:], perm[:nTest]
}

// DropNA removes every row with at least one missing value.
func DropNA(df dataframe.DataFrame) dataframe.DataFrame {
	cols := make([]series.Series, df.Ncol())
	for j, name := range df.Names() {
		cols[j] = df.Col(name)
	}

	var keep []int
	for i := 0; i < df.Nrow(); i++ {
		ok := true
		for j := range cols {
			if missing(cols[j].Elem(i)) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return df.Subset(keep)
}
