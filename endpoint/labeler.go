package endpoint

import (
	"database/sql"
	"math/rand"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

var speciesLabels = []string{"Adelie", "Chinstrap", "Gentoo"}

// Labeler generates ground truth labels for rows captured by a local
// inference service in a SQLite database. Quality controls how often the
// label agrees with the captured prediction: 1.0 copies every prediction,
// lower values substitute a random species to simulate model mistakes.
type Labeler struct {
	DB      string
	Quality float64
	Seed    int64
}

// Run labels every unlabeled captured row and reports how many it updated.
func (l *Labeler) Run() (int, error) {
	db, err := sql.Open("sqlite", l.DB)
	if err != nil {
		return 0, errors.Wrap(err, "open capture database")
	}
	defer db.Close()

	rows, err := db.Query("SELECT uuid, prediction FROM data WHERE species IS NULL")
	if err != nil {
		return 0, errors.Wrap(err, "query unlabeled rows")
	}

	type captured struct {
		uuid       string
		prediction string
	}
	var unlabeled []captured
	for rows.Next() {
		var c captured
		if err := rows.Scan(&c.uuid, &c.prediction); err != nil {
			rows.Close()
			return 0, errors.Wrap(err, "scan captured row")
		}
		unlabeled = append(unlabeled, c)
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "read unlabeled rows")
	}
	rows.Close()

	if len(unlabeled) == 0 {
		return 0, nil
	}

	rng := rand.New(rand.NewSource(l.Seed))
	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "begin labeling")
	}
	for _, c := range unlabeled {
		label := c.prediction
		if rng.Float64() >= l.Quality {
			label = speciesLabels[rng.Intn(len(speciesLabels))]
		}
		if _, err := tx.Exec("UPDATE data SET species = ? WHERE uuid = ?", label, c.uuid); err != nil {
			tx.Rollback()
			return 0, errors.Wrapf(err, "label row %s", c.uuid)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit labels")
	}
	return len(unlabeled), nil
}
