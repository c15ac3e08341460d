package lens

import (
	model "cadence-social/pkg/datamodel"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
)

// a Lens is a thing that reads in some trace format and imports it into the
// DB
type Lens interface {
	// initializes the lens
	Init(logger *logger.Logger)

	// imports the trace at `path` as `dataSetName`; returns the number of
	// events stored
	Import(path string, dataSetName string) (int, error)
}

// a map of all registered lenses.  There should be one lens for each trace
// file format
var LensStore map[string]Lens

// the lens used when none is named
const DefaultLens = "standard"

var log *logger.Logger = logger.StandardLogger()

// initialize the lenses; new lenses need to be added here
func LensInit(mainLogger *logger.Logger) {
	log = mainLogger
	LensStore = make(map[string]Lens)

	// populate the LensStore with all of the available lenses
	LensStore[DefaultLens] = &StandardEvents{}

	// initialize each lens
	for name, l := range LensStore {
		log.Debugf("initializing lens '%v'", name)
		l.Init(log)
	}
}

func GetInstalledLenses() string {
	lensesArr := make([]string, 0, len(LensStore))
	for k := range LensStore {
		lensesArr = append(lensesArr, k)
	}
	sort.Strings(lensesArr)
	return strings.Join(lensesArr, ",")
}

// dispatches the appropriate lens
func Import(lensName string, config *model.Config) error {
	path := config.CLI.Path
	dataSetName := config.CLI.Name

	l, ok := LensStore[lensName]
	if !ok {
		return fmt.Errorf("invalid lens name %q; valid lens names are [%v]", lensName, GetInstalledLenses())
	}
	imported, err := model.IsImported(dataSetName)
	if err != nil {
		return err
	}
	if imported {
		return fmt.Errorf("dataset %q already exists", dataSetName)
	}
	log.Infof("using lens %v to import data from '%v'; saving result as %v", lensName, path, dataSetName)
	// leftovers of an earlier, failed import
	if r := model.DB.Where("dataset_name = ?", dataSetName).Delete(&model.TraceEvent{}); r.Error != nil {
		return r.Error
	}
	ds := model.Dataset{
		DatasetName:    dataSetName,
		DateImported:   sql.NullTime{Valid: true, Time: time.Now()},
		SourcePath:     path,
		CompleteImport: false,
	}
	if r := model.DB.Save(&ds); r.Error != nil {
		return r.Error
	}

	// do the import
	n, err := l.Import(path, dataSetName)
	if err != nil {
		return err
	}

	// update the time
	ds.DateImported.Time = time.Now()
	ds.NumEvents = n
	ds.CompleteImport = true
	if r := model.DB.Save(&ds); r.Error != nil {
		return r.Error
	}
	log.Infof("imported %v events as %v", n, dataSetName)
	return nil
}

// StandardEvents is a Lens for standard events traces ("<time> <action> ...")
type StandardEvents struct {
	log *logger.Logger
}

func (s *StandardEvents) Init(log *logger.Logger) {
	s.log = log
}

// Import validates every line and stores it.  Nothing is kept complete if a
// line is bad: the dataset record stays incomplete.
func (s *StandardEvents) Import(path string, datasetName string) (int, error) {
	f, err := openTrace(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	traceChan := make(chan *model.TraceEvent, 1024)
	var barrier sync.WaitGroup
	var dbErrs []error
	barrier.Add(1)
	go model.RecordTraceEvents(traceChan, &barrier, &dbErrs)

	reader := NewReader(f)
	count := 0
	for {
		ev, lineNumber, raw, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			close(traceChan)
			barrier.Wait()
			return count, fmt.Errorf("importing %v: %w", path, err)
		}
		traceChan <- &model.TraceEvent{
			DatasetName: datasetName,
			Seq:         count,
			LineNumber:  lineNumber,
			Time:        ev.EventTime(),
			Line:        raw,
		}
		count++
		if count%100000 == 0 {
			s.log.Debugf("read %v events", count)
		}
	}
	close(traceChan)
	barrier.Wait()
	if len(dbErrs) > 0 {
		return count, fmt.Errorf("storing %v: %w", datasetName, errors.Join(dbErrs...))
	}
	return count, nil
}

// LoadDataset replays an imported dataset, in trace order.
func LoadDataset(datasetName string) ([]Event, error) {
	rows, err := model.GetTraceEvents(datasetName)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		ev, err := ParseLine(row.Line)
		if err != nil {
			return nil, fmt.Errorf("dataset %v: %w", datasetName, &ParseError{Line: row.LineNumber, Raw: row.Line, Err: err})
		}
		if ev != nil {
			events = append(events, ev)
		}
	}
	return events, nil
}
