package endpoint

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"

	"berkotech.co/penguins/dataset"
)

const batchSize = 10

// TrafficGenerator sends sampled penguin rows to a hosted model as JSON
// batches, optionally with drift added to the body mass column to exercise
// monitoring.
type TrafficGenerator struct {
	URL     string
	Samples int
	Drift   bool
	Timeout time.Duration
	Seed    int64
}

type payload struct {
	Inputs []map[string]interface{} `json:"inputs"`
	Params map[string]bool          `json:"params"`
}

// Run samples rows from df and posts them to the model in batches of up to
// ten. The species column and rows with missing values are dropped first.
// It returns the number of samples dispatched, which may be short of
// Samples if a request fails.
func (t *TrafficGenerator) Run(df dataframe.DataFrame) (int, error) {
	df = dataset.DropNA(df.Drop(dataset.ColSpecies))
	if df.Err != nil {
		return 0, errors.Wrap(df.Err, "prepare traffic data")
	}
	n := df.Nrow()
	if n == 0 {
		return 0, errors.New("no complete rows to sample")
	}

	rng := rand.New(rand.NewSource(t.Seed))
	if t.Drift {
		df = driftBodyMass(df, rng)
	}

	names := df.Names()
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = df.Col(name)
	}

	client := &http.Client{Timeout: t.Timeout}
	dispatched := 0
	for dispatched < t.Samples {
		size := t.Samples - dispatched
		if size > batchSize {
			size = batchSize
		}

		p := payload{
			Inputs: make([]map[string]interface{}, 0, size),
			Params: map[string]bool{"data_capture": true},
		}
		for b := 0; b < size; b++ {
			i := rng.Intn(n)
			row := make(map[string]interface{}, len(names))
			for j, name := range names {
				row[name] = cols[j].Elem(i).Val()
			}
			p.Inputs = append(p.Inputs, row)
		}

		body, err := json.Marshal(p)
		if err != nil {
			return dispatched, errors.Wrap(err, "marshal payload")
		}
		resp, err := client.Post(t.URL, "application/json", bytes.NewReader(body))
		if err != nil {
			return dispatched, errors.Wrap(err, "send traffic")
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			return dispatched, errors.Errorf("model returned status %s", resp.Status)
		}
		dispatched += size
	}
	return dispatched, nil
}

// driftBodyMass adds uniform noise in [1, 3σ) to every body mass value.
func driftBodyMass(df dataframe.DataFrame, rng *rand.Rand) dataframe.DataFrame {
	col := df.Col(dataset.ColBodyMass)
	std := col.StdDev()
	vals := make([]float64, col.Len())
	for i := range vals {
		vals[i] = col.Elem(i).Float() + 1 + rng.Float64()*(3*std-1)
	}
	return df.Mutate(series.New(vals, series.Float, dataset.ColBodyMass))
}
