package datamodel

import (
	"sync"
	"testing"

	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	config := MakeDefaultConfig()
	config.TopLevel.DBFile = "file::memory:?cache=shared"
	l := logger.New()
	l.SetLevel(logger.WarnLevel)
	require.NoError(t, Init(l, config))
}

func TestRecordAndLoadTraceEvents(t *testing.T) {
	setupTestDB(t)

	ch := make(chan *TraceEvent)
	var barrier sync.WaitGroup
	var errs []error
	barrier.Add(1)
	go RecordTraceEvents(ch, &barrier, &errs)
	for i := 0; i < 1500; i++ {
		ch <- &TraceEvent{DatasetName: "ds", Seq: i, LineNumber: i + 1, Time: float64(i), Line: "0 CONN 1 2 up"}
	}
	close(ch)
	barrier.Wait()
	require.Empty(t, errs)

	// not complete yet
	_, err := GetTraceEvents("ds")
	assert.Error(t, err)

	require.NoError(t, DB.Save(&Dataset{DatasetName: "ds", NumEvents: 1500, CompleteImport: true}).Error)
	events, err := GetTraceEvents("ds")
	require.NoError(t, err)
	assert.Len(t, events, 1500)
	assert.Equal(t, 0, events[0].Seq)
	assert.Equal(t, 1499, events[1499].Seq)

	names, err := GetDatasets()
	require.NoError(t, err)
	assert.Equal(t, []string{"ds"}, names)
}

func TestInitRejectsUnknownDB(t *testing.T) {
	config := MakeDefaultConfig()
	config.TopLevel.DataBase = "oracle"
	assert.Error(t, Init(logger.New(), config))
}
