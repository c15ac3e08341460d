// This package defines the data model for cadence-social.
// It uses gorm (https://gorm.io/) to store imported contact traces so that a
// scenario can be replayed without the original trace file.
package datamodel

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	logger "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// a reference to the DB GORM object
var DB *gorm.DB

// our logger
var log *logger.Logger

// a node identifier (basically, a host address)
type NodeId int

// return a string of the nodeid
func NodeIdString(i NodeId) string {
	return strconv.Itoa(int(i))
}

// A `Dataset` describes an imported trace.  The actual trace lines are stored
// as `TraceEvent`s
type Dataset struct {
	DatasetName    string `gorm:"primaryKey"`
	DateImported   sql.NullTime
	SourcePath     string
	NumEvents      int
	CompleteImport bool
}

// A `TraceEvent` is one non-comment line of a standard events trace.  The raw
// line is kept so that replaying goes through the same parser as reading the
// file directly.
type TraceEvent struct {
	DatasetName string  `gorm:"primaryKey;index:dstime,priority:1"`
	Seq         int     `gorm:"primaryKey"`
	LineNumber  int     // line number in the source file
	Time        float64 `gorm:"index:dstime,priority:2"`
	Line        string
}

// Record trace events.  This function should be started as a goroutine.  It
// waits for incoming events and records them in the database, in batches for
// efficiency
func RecordTraceEvents(traceChan chan *TraceEvent, barrier *sync.WaitGroup, errs *[]error) {
	defer barrier.Done()
	const batchsize = 1024 // an arbitrary choice
	batch := make([]*TraceEvent, 0, batchsize)

	for ev := range traceChan {
		batch = append(batch, ev)

		// if we've reached our batch size, send them to the DB
		if len(batch) >= batchsize {
			if r := DB.Create(&batch); r.Error != nil {
				log.Warnf("failed to record trace events: %v", r.Error)
				*errs = append(*errs, r.Error)
			}
			batch = make([]*TraceEvent, 0, batchsize)
		}
	}

	// the channel has been closed; flush whatever is left
	if len(batch) > 0 {
		if r := DB.Create(&batch); r.Error != nil {
			log.Warnf("failed to record trace events: %v", r.Error)
			*errs = append(*errs, r.Error)
		}
	}
}

// returns true iff the dataset has already been imported
func IsImported(datasetName string) (bool, error) {
	var ds Dataset
	r := DB.Limit(1).Find(&ds, "dataset_name = ? and complete_import = ?", datasetName, true)
	if r.Error != nil {
		return false, r.Error
	}
	return r.RowsAffected == 1, nil
}

// retrieves the names of all completely imported datasets
func GetDatasets() ([]string, error) {
	var datasets []Dataset
	if r := DB.Order("dataset_name").Find(&datasets, "complete_import = ?", true); r.Error != nil {
		return nil, r.Error
	}
	dsArray := make([]string, 0, len(datasets))
	for _, d := range datasets {
		dsArray = append(dsArray, d.DatasetName)
	}
	return dsArray, nil
}

// retrieves the trace of a dataset, in file order
func GetTraceEvents(datasetName string) ([]TraceEvent, error) {
	imported, err := IsImported(datasetName)
	if err != nil {
		return nil, err
	}
	if !imported {
		return nil, fmt.Errorf("dataset %q has not been imported", datasetName)
	}
	var events []TraceEvent
	if r := DB.Order("seq").Find(&events, "dataset_name = ?", datasetName); r.Error != nil {
		return nil, r.Error
	}
	return events, nil
}

// initializes the data model, creating (and updating!) tables if necessary
func Init(mainLogger *logger.Logger, config *Config) error {

	// extract the database type and file from the config
	dbType := config.TopLevel.DataBase
	dbFileOrDSN := config.TopLevel.DBFile

	var err error

	log = mainLogger

	gormConfig := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	switch dbType {
	case "sqlite":
		DB, err = gorm.Open(sqlite.Open(dbFileOrDSN), gormConfig)
	case "mysql":
		DB, err = gorm.Open(mysql.Open(dbFileOrDSN), gormConfig)
	default:
		return fmt.Errorf("invalid or unsupported database type: %v", dbType)
	}
	if err != nil {
		return fmt.Errorf("opening %v database: %w", dbType, err)
	}
	log.Infof("using database '%v'", dbFileOrDSN)

	// a list of blank structs
	tablesToMigrate := []interface{}{
		&Dataset{},
		&TraceEvent{},
	}

	// use GORM to create a DB table for each of the above structs
	for _, table := range tablesToMigrate {
		if err = DB.AutoMigrate(table); err != nil {
			return fmt.Errorf("migrating %T: %w", table, err)
		}
	}
	return nil
}
