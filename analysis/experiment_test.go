package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"berkotech.co/penguins/dataset"
)

func TestPredictivePower(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	res, err := PredictivePower(df, dataset.ColSex, dataset.ColSpecies)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Accuracy, 0.0)
	assert.LessOrEqual(t, res.Accuracy, 1.0)
	assert.Equal(t, 45, res.TrainRows+res.TestRows)
	assert.Equal(t, 13, res.TestRows)

	if res.Accuracy > VerdictThreshold {
		assert.Equal(t, VerdictPositive, res.Verdict)
	} else {
		assert.Equal(t, VerdictNegative, res.Verdict)
	}
}

func TestPredictivePowerReproducible(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	res1, err := PredictivePower(df, dataset.ColSex, dataset.ColSpecies)
	require.NoError(t, err)
	res2, err := PredictivePower(df, dataset.ColSex, dataset.ColSpecies)
	require.NoError(t, err)

	assert.Equal(t, res1, res2)
}

func TestPredictivePowerDegenerateTarget(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	// A target with a single class cannot be fit.
	single := df.Filter(dataframe.F{Colname: dataset.ColSpecies, Comparator: "==", Comparando: "Gentoo"})
	require.NoError(t, single.Err)

	_, err = PredictivePower(single, dataset.ColSex, dataset.ColSpecies)
	assert.Error(t, err)
}

func TestTrainSexSpeciesPredict(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	m, err := TrainSexSpecies(df)
	require.NoError(t, err)
	require.Len(t, m.SpeciesLevels, 3)

	for _, sex := range []string{"MALE", "FEMALE", ""} {
		assert.Contains(t, m.SpeciesLevels, m.PredictSex(sex))
	}
}

func TestSexSpeciesModelSaveLoad(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	m, err := TrainSexSpecies(df)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, m.Save(path))

	loaded, err := LoadSexSpecies(path)
	require.NoError(t, err)
	assert.Equal(t, m.SexLevels, loaded.SexLevels)
	assert.Equal(t, m.SpeciesLevels, loaded.SpeciesLevels)
	assert.Equal(t, m.PredictSex("MALE"), loaded.PredictSex("MALE"))
}

func TestMassFlipperRegression(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	r, err := MassFlipperRegression(df)
	require.NoError(t, err)

	assert.NotEmpty(t, r.Formula)
	assert.Greater(t, r.R2, 0.5)
}

func TestSaveHistogram(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mass.png")
	require.NoError(t, SaveHistogram(df, dataset.ColBodyMass, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveCulmenScatter(t *testing.T) {
	df, err := dataset.Load("testdata/penguins.csv")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "culmen.png")
	require.NoError(t, SaveCulmenScatter(df, path))

	_, err = os.Stat(path)
	require.NoError(t, err)
}
