package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"berkotech.co/penguins/analysis"
	"berkotech.co/penguins/dataset"
	"berkotech.co/penguins/endpoint"
)

const defaultData = "data/penguins.csv"

func usage() {
	fmt.Fprintln(os.Stderr, `usage: penguins <command> [flags]

commands:
  inspect     print the dataset and its summary statistics
  experiment  test whether sex has predictive power over species
  train       fit the sex->species model and save it
  predict     predict species from sex values read from stdin
  plot        write histograms and a culmen scatter, print the mass~flipper fit
  traffic     send sampled rows to a hosted model
  label       generate ground truth labels for captured data`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "inspect":
		runInspect(os.Args[2:])
	case "experiment":
		runExperiment(os.Args[2:])
	case "train":
		runTrain(os.Args[2:])
	case "predict":
		runPredict(os.Args[2:])
	case "plot":
		runPlot(os.Args[2:])
	case "traffic":
		runTraffic(os.Args[2:])
	case "label":
		runLabel(os.Args[2:])
	default:
		usage()
	}
}

func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	input := fs.String("input", defaultData, "Path to the penguins CSV file")
	fs.Parse(args)

	df, err := dataset.Load(*input)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(df)
	fmt.Println(df.Describe())
}

func runExperiment(args []string) {
	fs := flag.NewFlagSet("experiment", flag.ExitOnError)
	input := fs.String("input", defaultData, "Path to the penguins CSV file")
	fs.Parse(args)

	df, err := dataset.Load(*input)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(df)

	res, err := analysis.PredictivePower(df, dataset.ColSex, dataset.ColSpecies)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Accuracy: %v\n", res.Accuracy)
	fmt.Printf("Sex %s over species.\n", res.Verdict)
}

func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	input := fs.String("input", defaultData, "Path to the penguins CSV file")
	output := fs.String("output", "penguins_model.gob", "Path to save the trained model")
	fs.Parse(args)

	df, err := dataset.Load(*input)
	if err != nil {
		log.Fatal(err)
	}
	m, err := analysis.TrainSexSpecies(df)
	if err != nil {
		log.Fatal(err)
	}
	if err := m.Save(*output); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Saved model to %s\n", *output)
}

func runPredict(args []string) {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	modelPath := fs.String("model", "penguins_model.gob", "Path to a model written by train")
	fs.Parse(args)

	m, err := analysis.LoadSexSpecies(*modelPath)
	if err != nil {
		log.Fatal(err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("sex: ")
		if !scanner.Scan() {
			break
		}
		sex := strings.TrimSpace(scanner.Text())
		fmt.Println(m.PredictSex(sex))
	}
}

func runPlot(args []string) {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	input := fs.String("input", defaultData, "Path to the penguins CSV file")
	outDir := fs.String("out", "output", "Directory to write plots into")
	fs.Parse(args)

	df, err := dataset.Load(*input)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	for _, col := range dataset.NumericColumns {
		path := filepath.Join(*outDir, col+".png")
		if err := analysis.SaveHistogram(df, col, path); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	scatter := filepath.Join(*outDir, "culmen.png")
	if err := analysis.SaveCulmenScatter(df, scatter); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s\n", scatter)

	r, err := analysis.MassFlipperRegression(df)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(r.Formula)
	fmt.Printf("R2: %.4f\n", r.R2)
}

func runTraffic(args []string) {
	fs := flag.NewFlagSet("traffic", flag.ExitOnError)
	input := fs.String("input", defaultData, "Path to the penguins CSV file")
	url := fs.String("url", "http://127.0.0.1:8080/invocations", "URL of the hosted model")
	samples := fs.Int("samples", 200, "Number of samples to send")
	drift := fs.Bool("drift", false, "Add drift to the body mass column")
	seed := fs.Int64("seed", 0, "Sampling seed (0 uses the current time)")
	fs.Parse(args)

	df, err := dataset.Load(*input)
	if err != nil {
		log.Fatal(err)
	}

	gen := &endpoint.TrafficGenerator{
		URL:     *url,
		Samples: *samples,
		Drift:   *drift,
		Timeout: 5 * time.Second,
		Seed:    seedOrNow(*seed),
	}
	dispatched, err := gen.Run(df)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Dispatched %d samples to the hosted model.", dispatched)
}

func runLabel(args []string) {
	fs := flag.NewFlagSet("label", flag.ExitOnError)
	db := fs.String("db", "penguins.db", "Path to the capture database")
	quality := fs.Float64("quality", 0.8, "Fraction of labels that agree with the captured prediction")
	seed := fs.Int64("seed", 0, "Labeling seed (0 uses the current time)")
	fs.Parse(args)

	labeler := &endpoint.Labeler{DB: *db, Quality: *quality, Seed: seedOrNow(*seed)}
	labeled, err := labeler.Run()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Labeled %d samples.", labeled)
}

func seedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
