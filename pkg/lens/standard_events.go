package lens

import (
	"bufio"
	model "cadence-social/pkg/datamodel"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
)

const (
	ActionCreate     = "C"
	ActionSend       = "S"
	ActionDelivered  = "DE"
	ActionAbort      = "A"
	ActionDrop       = "DR"
	ActionRemove     = "R"
	ActionConnection = "CONN"

	connectionUp   = "up"
	connectionDown = "down"

	// message id that stands for every message of a host
	AllMessagesID = "*"
)

// ParseError reports a trace line that cannot be read.
type ParseError struct {
	Line int    // 1-based line number
	Raw  string // the line as read
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrUpDown        = errors.New("unknown up/down value")
)

// true for blank lines and lines starting with '#'
func skipLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// hostAddress extracts the address of a host id: either all digits, or a
// non-digit prefix followed by digits ("p12" -> 12).
func hostAddress(hostId string) (model.NodeId, error) {
	i := len(hostId)
	for i > 0 && unicode.IsDigit(rune(hostId[i-1])) {
		i--
	}
	if i == len(hostId) {
		return 0, fmt.Errorf("invalid host id %q", hostId)
	}
	for _, r := range hostId[:i] {
		if unicode.IsDigit(r) {
			return 0, fmt.Errorf("invalid host id %q", hostId)
		}
	}
	addr, err := strconv.Atoi(hostId[i:])
	if err != nil {
		return 0, fmt.Errorf("invalid host id %q: %w", hostId, err)
	}
	return model.NodeId(addr), nil
}

// splitTimeAction accepts both "<time> <action> ..." and "<action> <time> ..."
func splitTimeAction(fields []string) (float64, string, []string, error) {
	if len(fields) < 2 {
		return 0, "", nil, errors.New("missing time or action")
	}
	for i, token := range fields[:2] {
		t, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, "", nil, fmt.Errorf("time %q is not finite", token)
		}
		return t, fields[1-i], fields[2:], nil
	}
	return 0, "", nil, fmt.Errorf("no valid time in %q or %q", fields[0], fields[1])
}

func need(args []string, n int, what string) error {
	if len(args) < n {
		return fmt.Errorf("missing %v", what)
	}
	return nil
}

// ParseLine parses one line of a standard events trace.  Comments and blank
// lines give a nil event and no error.  Errors are not ParseErrors; the
// caller knows the line number.
func ParseLine(line string) (Event, error) {
	if skipLine(line) {
		return nil, nil
	}
	t, action, args, err := splitTimeAction(strings.Fields(line))
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionDrop, ActionRemove:
		if err := need(args, 2, "message id or host"); err != nil {
			return nil, err
		}
		host, err := hostAddress(args[1])
		if err != nil {
			return nil, err
		}
		return &MessageDeleteEvent{Time: t, ID: args[0], Host: host, Drop: action == ActionDrop}, nil

	case ActionConnection:
		if err := need(args, 3, "hosts or up/down"); err != nil {
			return nil, err
		}
		h1, err := hostAddress(args[0])
		if err != nil {
			return nil, err
		}
		h2, err := hostAddress(args[1])
		if err != nil {
			return nil, err
		}
		ev := &ContactEvent{Time: t, Host1: h1, Host2: h2}
		switch strings.ToLower(args[2]) {
		case connectionUp:
			ev.Up = true
		case connectionDown:
			ev.Up = false
		default:
			return nil, fmt.Errorf("%w %q", ErrUpDown, args[2])
		}
		if len(args) > 3 {
			ev.Interface = args[3]
		}
		return ev, nil

	case ActionCreate, ActionSend, ActionDelivered, ActionAbort:
		if err := need(args, 3, "message id or hosts"); err != nil {
			return nil, err
		}
		from, err := hostAddress(args[1])
		if err != nil {
			return nil, err
		}
		to, err := hostAddress(args[2])
		if err != nil {
			return nil, err
		}
		if action != ActionCreate {
			stage := map[string]RelayStage{
				ActionSend:      RelaySending,
				ActionDelivered: RelayTransferred,
				ActionAbort:     RelayAborted,
			}[action]
			return &MessageRelayEvent{Time: t, ID: args[0], From: from, To: to, Stage: stage}, nil
		}
		if err := need(args, 4, "message size"); err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(args[3])
		if err != nil || size < 0 {
			return nil, fmt.Errorf("invalid message size %q", args[3])
		}
		ev := &MessageCreateEvent{Time: t, ID: args[0], From: from, To: to, Size: size}
		// a trailing token that is not a number is ignored
		if len(args) > 4 {
			if resp, err := strconv.Atoi(args[4]); err == nil {
				if resp < 0 {
					return nil, fmt.Errorf("invalid response size %q", args[4])
				}
				ev.ResponseSize = resp
			}
		}
		return ev, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownAction, action)
}

// Reader reads the events of a standard events trace one by one.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next event, the number of its line and its text.  It
// returns io.EOF once the trace is exhausted.
func (r *Reader) Next() (Event, int, string, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Text()
		ev, err := ParseLine(raw)
		if err != nil {
			return nil, r.line, raw, &ParseError{Line: r.line, Raw: raw, Err: err}
		}
		if ev != nil {
			return ev, r.line, raw, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, r.line, "", err
	}
	return nil, r.line, "", io.EOF
}

// ReadAll reads every event of the trace, stopping at the first bad line.
func ReadAll(r io.Reader) ([]Event, error) {
	events := make([]Event, 0)
	reader := NewReader(r)
	for {
		ev, _, _, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// opens a trace file, transparently decompressing .gz files
func openTrace(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return file, nil
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &gzipFile{Reader: gz, file: file}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// ReadFile reads a whole trace file.
func ReadFile(path string) ([]Event, error) {
	f, err := openTrace(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	events, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %v: %w", path, err)
	}
	return events, nil
}
