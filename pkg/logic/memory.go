package logic

import (
	"sort"

	logger "github.com/sirupsen/logrus"
)

// the message buffer of one node
type SimpleBuffer struct {
	BufferSize  int
	BufferUsage int
	MaxBuffer   int // maximum usage seen so far

	messages  map[string]*Message
	organizer MemoryOrganizer
	log       *logger.Entry

	// messages that must not be evicted (e.g. the one being sent)
	protected func(id string) bool
	// called for every message evicted to make room
	onDrop func(m *Message)
}

func NewSimpleBuffer(size int, organizer MemoryOrganizer, log *logger.Entry) *SimpleBuffer {
	return &SimpleBuffer{
		BufferSize: size,
		messages:   make(map[string]*Message),
		organizer:  organizer,
		log:        log,
		protected:  func(string) bool { return false },
		onDrop:     func(*Message) {},
	}
}

func (b *SimpleBuffer) FreeSpace() int {
	return b.BufferSize - b.BufferUsage
}

func (b *SimpleBuffer) HasMessage(id string) bool {
	_, ok := b.messages[id]
	return ok
}

func (b *SimpleBuffer) GetMessage(id string) (*Message, bool) {
	m, ok := b.messages[id]
	return m, ok
}

func (b *SimpleBuffer) Len() int {
	return len(b.messages)
}

// stores a message; replaces (and re-accounts) an older copy with the same id
func (b *SimpleBuffer) Add(m *Message) {
	if old, ok := b.messages[m.MessageId]; ok {
		b.BufferUsage -= old.Size
	}
	b.messages[m.MessageId] = m
	b.BufferUsage += m.Size
	//update max buffer usage over time
	if b.MaxBuffer < b.BufferUsage {
		b.MaxBuffer = b.BufferUsage
	}
}

// delete a message from the buffer; returns nil if it was not there
func (b *SimpleBuffer) Remove(id string) *Message {
	m, ok := b.messages[id]
	if !ok {
		return nil
	}
	delete(b.messages, id)
	b.BufferUsage -= m.Size
	return m
}

// HeldMessages returns a snapshot of the buffer, oldest arrival first.
// Callers may add or remove messages while iterating the result.
func (b *SimpleBuffer) HeldMessages() []*Message {
	held := make([]*Message, 0, len(b.messages))
	for _, m := range b.messages {
		held = append(held, m)
	}
	sort.Slice(held, func(i, j int) bool {
		if held[i].ReceiveTime != held[j].ReceiveTime {
			return held[i].ReceiveTime < held[j].ReceiveTime
		}
		return held[i].MessageId < held[j].MessageId
	})
	return held
}

// ReserveSpace makes room for `size` more bytes, evicting messages as the
// organizer decides.  It either succeeds completely or returns false.
func (b *SimpleBuffer) ReserveSpace(size int) bool {
	if b.organizer.OrganizerTypeReturn() == OrganizerTypeSimpleBounded && size > b.BufferSize {
		return false
	}
	//loop until solution is found
	for !b.organizer.CheckMemory(b, size) {
		if !b.organizer.MakeRoom(b) {
			b.log.Debugf("cannot free %v bytes (free %v)", size, b.FreeSpace())
			return false
		}
	}
	return true
}
