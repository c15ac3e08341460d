package main

import (
	model "cadence-social/pkg/datamodel"
	"cadence-social/pkg/lens"
	logics "cadence-social/pkg/logic"
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	logger "github.com/sirupsen/logrus"
)

// create global log variable
var log *logger.Logger = logger.StandardLogger()

// flags every command understands
type commonArgs struct {
	config *string
	log    *string
	seed   *int
}

func addCommonArgs(cmd *argparse.Command) *commonArgs {
	return &commonArgs{
		config: cmd.String("c", "config", &argparse.Options{Help: "JSON or YAML config file"}),
		log:    cmd.String("l", "log", &argparse.Options{Help: "log level, overrides top_level.log"}),
		seed:   cmd.Int("s", "seed", &argparse.Options{Help: "PRNG seed, overrides top_level.seed"}),
	}
}

// reads the config file (if any) and applies the command line overrides
func (c *commonArgs) load() (*model.Config, error) {
	config := model.MakeDefaultConfig()
	if *c.config != "" {
		var err error
		if config, err = model.LoadConfig(*c.config); err != nil {
			return nil, err
		}
	}
	if *c.log != "" {
		config.TopLevel.Log = *c.log
	}
	if *c.seed != 0 {
		config.TopLevel.Seed = *c.seed
	}
	return config, nil
}

func main() {
	parser := argparse.NewParser("cadence", "simulates social-aware forwarding in delay tolerant networks")

	simCmd := parser.NewCommand("sim", "run a simulation")
	simArgs := addCommonArgs(simCmd)
	traceFile := simCmd.String("t", "trace", &argparse.Options{Help: "standard events trace file"})
	datasetName := simCmd.String("d", "dataset", &argparse.Options{Help: "imported dataset to replay"})
	router := simCmd.String("r", "router", &argparse.Options{Help: "router of every node (peoplerank, epidemic)"})

	importCmd := parser.NewCommand("import", "import a trace into the database")
	importArgs := addCommonArgs(importCmd)
	importPath := importCmd.String("p", "path", &argparse.Options{Help: "trace file to import"})
	importName := importCmd.String("n", "name", &argparse.Options{Help: "dataset name"})
	lensName := importCmd.String("x", "lens", &argparse.Options{Help: "trace format", Default: lens.DefaultLens})

	listCmd := parser.NewCommand("list", "list routers, lenses and imported datasets")
	listArgs := addCommonArgs(listCmd)

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}

	var common *commonArgs
	switch {
	case simCmd.Happened():
		common = simArgs
	case importCmd.Happened():
		common = importArgs
	default:
		common = listArgs
	}
	config, err := common.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *traceFile != "" {
		config.Simulation.TraceFile = *traceFile
		config.Simulation.DatasetName = ""
	}
	if *datasetName != "" {
		config.Simulation.DatasetName = *datasetName
	}
	if *router != "" {
		config.Simulation.Router = *router
	}
	if *importPath != "" {
		config.CLI.Path = *importPath
	}
	if *importName != "" {
		config.CLI.Name = *importName
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// set up the logger
	if log, err = newLogger(config.TopLevel.Log, config.TopLevel.TimeFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Debugf("running with config: %+v", *config)

	// set up PRNG
	model.Seed(int64(config.TopLevel.Seed))
	log.Infof("random seed is %v", config.TopLevel.Seed)
	log.Infof("logging at log level %v; all times in UTC", config.TopLevel.Log)

	logics.Init(log)
	lens.LensInit(log)

	switch {
	case simCmd.Happened():
		if config.Simulation.DatasetName != "" {
			initDB(config)
		}
		events, err := loadEvents(config)
		if err != nil {
			log.Fatalf("cannot load scenario: %v", err)
		}
		result, err := simulate(config, events)
		if err != nil {
			log.Fatalf("simulation failed: %v", err)
		}
		fmt.Println(result)

	case importCmd.Happened():
		initDB(config)
		if config.CLI.Path == "" {
			log.Fatal("import needs a trace path (-p)")
		}
		if err := lens.Import(*lensName, config); err != nil {
			log.Fatalf("import failed: %v", err)
		}

	case listCmd.Happened():
		initDB(config)
		datasets, err := model.GetDatasets()
		if err != nil {
			log.Fatalf("cannot list datasets: %v", err)
		}
		fmt.Println("installed routers:", logics.GetInstalledRouters())
		fmt.Println("installed lenses:", lens.GetInstalledLenses())
		fmt.Println("imported datasets:", datasets)
	}

	log.Info(" ... ending ... ")
}

func initDB(config *model.Config) {
	if err := model.Init(log, config); err != nil {
		log.Fatalf("cannot open database: %v", err)
	}
}
