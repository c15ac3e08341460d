package main

import (
	model "cadence-social/pkg/datamodel"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/akamensky/argparse"
	logger "github.com/sirupsen/logrus"
)

type world_info struct {
	num_hosts     int
	sim_max_time  float64
	contact_gap   float64 // mean time between two contacts of a pair
	contact_len   float64 // mean contact duration
	num_messages  int
	message_size  int
	response_size int
	host_prefix   string
}

type event struct {
	time float64
	seq  int // generation order, breaks ties
	line string
}

var log *logger.Logger

func fmtTime(t float64) string {
	return strconv.FormatFloat(t, 'f', 3, 64)
}

func (w *world_info) host(i int) string {
	return w.host_prefix + strconv.Itoa(i)
}

// event_recorder collects the events, sorts them by time and dumps them
func event_recorder(out io.Writer, ch chan *event, done chan error) {
	events := make([]*event, 0, 1024)
	for e := range ch {
		events = append(events, e)
	}
	log.Infof("sorting %v events", len(events))
	sort.Slice(events, func(i, j int) bool {
		if events[i].time != events[j].time {
			return events[i].time < events[j].time
		}
		return events[i].seq < events[j].seq
	})
	if _, err := fmt.Fprintf(out, "# cadence-social contact trace\n"); err != nil {
		done <- err
		return
	}
	for _, e := range events {
		if _, err := fmt.Fprintln(out, e.line); err != nil {
			done <- err
			return
		}
	}
	done <- nil
}

// generate draws every contact and message from the seeded PRNG.  Drawing
// happens on one goroutine so that a seed always gives the same trace.
func generate(world *world_info, ch chan *event) {
	seq := 0
	emit := func(t float64, line string) {
		ch <- &event{time: t, seq: seq, line: line}
		seq++
	}

	for a := 0; a < world.num_hosts; a++ {
		for b := a + 1; b < world.num_hosts; b++ {
			t := model.Exp(world.contact_gap)
			for t < world.sim_max_time {
				end := math.Min(t+model.Exp(world.contact_len), world.sim_max_time)
				emit(t, fmt.Sprintf("%v CONN %v %v up", fmtTime(t), world.host(a), world.host(b)))
				emit(end, fmt.Sprintf("%v CONN %v %v down", fmtTime(end), world.host(a), world.host(b)))
				log.Debugf("contact %v-%v from %v to %v", a, b, t, end)
				t = end + model.Exp(world.contact_gap)
			}
		}
	}

	if world.num_hosts < 2 {
		return
	}
	for i := 0; i < world.num_messages; i++ {
		t := model.Float64() * world.sim_max_time
		from := int(model.Intn(int64(world.num_hosts)))
		to := int(model.Intn(int64(world.num_hosts - 1)))
		if to >= from {
			to++
		}
		emit(t, fmt.Sprintf("%v C M%v %v %v %v %v", fmtTime(t), i, world.host(from), world.host(to), world.message_size, world.response_size))
	}
}

// writes a whole trace to out
func writeTrace(world *world_info, out io.Writer) error {
	ch := make(chan *event, 1024)
	done := make(chan error)
	go event_recorder(out, ch, done)
	generate(world, ch)
	close(ch)
	return <-done
}

func main() {

	log = logger.New()
	log.SetLevel(logger.InfoLevel)

	parser := argparse.NewParser("gen-contact-trace", "produces a standard events contact trace")

	output_file := parser.String("f", "output", &argparse.Options{
		Help:     "file to (over)write",
		Required: true,
	})
	num_hosts := parser.Int("n", "numhosts", &argparse.Options{
		Help:     "number of hosts",
		Required: true,
	})
	sim_time_max := parser.Float("t", "simtime", &argparse.Options{
		Help:     "simulation time",
		Required: true,
	})
	contact_gap := parser.Float("g", "gap", &argparse.Options{
		Help:    "mean time between contacts of a pair",
		Default: 600.0,
	})
	contact_len := parser.Float("d", "duration", &argparse.Options{
		Help:    "mean contact duration",
		Default: 60.0,
	})
	num_messages := parser.Int("m", "messages", &argparse.Options{
		Help:    "number of messages to create",
		Default: 100,
	})
	message_size := parser.Int("z", "size", &argparse.Options{
		Help:    "message size in bytes",
		Default: 1000,
	})
	response_size := parser.Int("r", "response", &argparse.Options{
		Help:    "response size in bytes (0 = none)",
		Default: 0,
	})
	host_prefix := parser.String("p", "prefix", &argparse.Options{
		Help:    "host id prefix",
		Default: "n",
	})
	seed := parser.Int("s", "seed", &argparse.Options{
		Help:    "PRNG seed",
		Default: 12345,
	})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "debug output"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}
	if *verbose {
		log.SetLevel(logger.DebugLevel)
	}

	world := world_info{
		num_hosts:     *num_hosts,
		sim_max_time:  *sim_time_max,
		contact_gap:   *contact_gap,
		contact_len:   *contact_len,
		num_messages:  *num_messages,
		message_size:  *message_size,
		response_size: *response_size,
		host_prefix:   *host_prefix,
	}
	if world.num_hosts < 1 || world.sim_max_time <= 0 || world.contact_gap <= 0 || world.contact_len <= 0 {
		log.Fatal("numhosts, simtime, gap and duration must be positive")
	}

	model.Seed(int64(*seed))
	f, err := os.Create(*output_file)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := writeTrace(&world, f); err != nil {
		log.Fatalf("writing %v: %v", *output_file, err)
	}
	log.Infof("trace written to %v", *output_file)
}
