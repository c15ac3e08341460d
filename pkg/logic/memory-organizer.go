package logic

import "fmt"

// this is the equivalent of an OrganizerType enum
type OrganizerType int64

const (
	OrganizerTypeUnknown OrganizerType = iota
	OrganizerTypeSimpleBounded
	OrganizerTypeSimpleUnbounded
)

// memory interface - checks the buffer and evicts messages
type MemoryOrganizer interface {
	//check if `size` more bytes fit in the buffer
	CheckMemory(buf *SimpleBuffer, size int) bool
	// evict one message; false if nothing can be evicted
	MakeRoom(buf *SimpleBuffer) bool
	// organizer type
	OrganizerTypeReturn() OrganizerType
}

// pick the organizer by its config name
func NewOrganizer(name string) (MemoryOrganizer, error) {
	switch name {
	case "bounded":
		return new(SimpleBoundedOrganizer), nil
	case "unbounded":
		return new(UnboundedOrganizer), nil
	}
	return nil, fmt.Errorf("unknown buffer organizer %q", name)
}

// bounded
type SimpleBoundedOrganizer struct{}

// return the organizer type
func (or *SimpleBoundedOrganizer) OrganizerTypeReturn() OrganizerType {
	return OrganizerTypeSimpleBounded
}

// compare buffer size and message size
func (or *SimpleBoundedOrganizer) CheckMemory(buf *SimpleBuffer, size int) bool {
	return (size + buf.BufferUsage) <= buf.BufferSize
}

// making room by a simple bounded technique:
// it erases the oldest message that is not protected
func (or *SimpleBoundedOrganizer) MakeRoom(buf *SimpleBuffer) bool {
	var oldestMessage *Message
	for _, message := range buf.HeldMessages() {
		if buf.protected(message.MessageId) {
			continue
		}
		oldestMessage = message
		break
	}
	if oldestMessage == nil {
		return false
	}
	buf.Remove(oldestMessage.MessageId)
	buf.log.Debugf("dropped %v to make room", oldestMessage.MessageId)
	buf.onDrop(oldestMessage)
	return true
}

// unbounded
type UnboundedOrganizer struct{}

// return the organizer type
func (or *UnboundedOrganizer) OrganizerTypeReturn() OrganizerType {
	return OrganizerTypeSimpleUnbounded
}

// return true, as unbounded does not care about the max bound
func (or *UnboundedOrganizer) CheckMemory(buf *SimpleBuffer, size int) bool {
	return true
}

// in the case of unbounded buffer, there is no need for this
func (or *UnboundedOrganizer) MakeRoom(buf *SimpleBuffer) bool {
	return true
}
