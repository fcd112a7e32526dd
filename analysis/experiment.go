package analysis

import (
	"encoding/gob"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"

	"berkotech.co/penguins/dataset"
	"berkotech.co/penguins/model"
)

// Split and verdict parameters of the predictive-power experiment. The
// split is seeded so the computed accuracy is reproducible.
const (
	TestRatio        = 0.3
	SplitSeed        = 42
	VerdictThreshold = 0.5
)

const (
	VerdictPositive = "has predictive power"
	VerdictNegative = "does not have predictive power"
)

// Result of a predictive-power experiment.
type Result struct {
	Accuracy  float64
	Verdict   string
	TrainRows int
	TestRows  int
}

// PredictivePower tests whether featureCol carries signal for targetCol.
// Both columns are recoded to integer category codes (missing feature
// values become the sentinel code and stay in the sample), the rows are
// split 70/30 with a fixed seed, a logistic regression is fit on the
// training partition and scored on the held-out one. The verdict compares
// accuracy against 0.5 regardless of how many classes the target has.
func PredictivePower(df dataframe.DataFrame, featureCol, targetCol string) (Result, error) {
	featCodes, _ := dataset.Codes(df, featureCol)
	targetCodes, targetLevels := dataset.Codes(df, targetCol)
	if len(targetLevels) < 2 {
		return Result{}, errors.Errorf("column %q has fewer than two classes", targetCol)
	}

	var (
		X [][]float64
		y []float64
	)
	for i := range featCodes {
		if targetCodes[i] == dataset.MissingCode {
			continue
		}
		X = append(X, []float64{featCodes[i]})
		y = append(y, targetCodes[i])
	}
	if len(X) == 0 {
		return Result{}, errors.Errorf("column %q has no labeled rows", targetCol)
	}

	trainIdx, testIdx := dataset.SplitIndex(len(X), TestRatio, SplitSeed)
	if len(testIdx) == 0 {
		return Result{}, errors.New("test partition is empty")
	}

	XTrain, yTrain := take(X, y, trainIdx)
	XTest, yTest := take(X, y, testIdx)

	m := model.NewSoftmax(1, len(targetLevels))
	if err := m.Fit(XTrain, yTrain); err != nil {
		return Result{}, errors.Wrap(err, "fit")
	}

	acc := model.Accuracy(yTest, m.Predict(XTest))
	verdict := VerdictNegative
	if acc > VerdictThreshold {
		verdict = VerdictPositive
	}
	return Result{
		Accuracy:  acc,
		Verdict:   verdict,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
	}, nil
}

func take(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	outX := make([][]float64, len(idx))
	outY := make([]float64, len(idx))
	for i, j := range idx {
		outX[i] = X[j]
		outY[i] = y[j]
	}
	return outX, outY
}

// SexSpeciesModel is a sex→species classifier fit on the whole dataset,
// with the category levels needed to decode predictions.
type SexSpeciesModel struct {
	Model         *model.Softmax
	SexLevels     []string
	SpeciesLevels []string
}

// TrainSexSpecies fits a sex→species model on every labeled row of df.
func TrainSexSpecies(df dataframe.DataFrame) (*SexSpeciesModel, error) {
	sexCodes, sexLevels := dataset.Codes(df, dataset.ColSex)
	speciesCodes, speciesLevels := dataset.Codes(df, dataset.ColSpecies)
	if len(speciesLevels) < 2 {
		return nil, errors.New("need at least two species")
	}

	var (
		X [][]float64
		y []float64
	)
	for i := range sexCodes {
		if speciesCodes[i] == dataset.MissingCode {
			continue
		}
		X = append(X, []float64{sexCodes[i]})
		y = append(y, speciesCodes[i])
	}

	m := model.NewSoftmax(1, len(speciesLevels))
	if err := m.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "fit")
	}
	return &SexSpeciesModel{Model: m, SexLevels: sexLevels, SpeciesLevels: speciesLevels}, nil
}

// PredictSex returns the predicted species for a sex value. Unknown or
// empty values use the missing sentinel code, matching training.
func (s *SexSpeciesModel) PredictSex(sex string) string {
	code := float64(dataset.MissingCode)
	for i, lvl := range s.SexLevels {
		if lvl == sex {
			code = float64(i)
			break
		}
	}
	pred := s.Model.Predict([][]float64{{code}})
	return s.SpeciesLevels[int(pred[0])]
}

// Save writes the model and its levels to path with gob.
func (s *SexSpeciesModel) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save model")
	}
	defer f.Close()
	return errors.Wrap(gob.NewEncoder(f).Encode(s), "encode model")
}

// LoadSexSpecies reads a model written by Save.
func LoadSexSpecies(path string) (*SexSpeciesModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load model")
	}
	defer f.Close()
	var s SexSpeciesModel
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode model")
	}
	return &s, nil
}
