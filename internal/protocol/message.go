package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Wire markers. A status answers a mutation, a boolean literal answers a
// predicate query, and anything else on the wire is a record payload.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrUnevenItems is returned when a record response would mix item sizes,
// which would make the payload unsplittable for the caller.
var ErrUnevenItems = errors.New("not all items in the response have the same length")

// Message is one wire response: a status marker, a boolean literal, or a
// uniform-width record list.
type Message struct {
	items    []string
	itemSize int
}

// Success returns the status marker for a completed mutation.
func Success() Message {
	return Message{items: []string{StatusSuccess}, itemSize: len(StatusSuccess)}
}

// Failure returns the status marker for a rejected or unparseable request.
func Failure() Message {
	return Message{items: []string{StatusError}, itemSize: len(StatusError)}
}

// Bool returns a boolean literal response.
func Bool(v bool) Message {
	s := "false"
	if v {
		s = "true"
	}
	return Message{items: []string{s}, itemSize: len(s)}
}

// Records builds a record-list response. Every item must have the same
// length: the caller on the far side splits the concatenation by the slot
// size alone.
func Records(items []string) (Message, error) {
	if len(items) == 0 {
		return Message{}, nil
	}
	size := len(items[0])
	for _, it := range items {
		if len(it) != size {
			return Message{}, fmt.Errorf("%w: %d vs %d", ErrUnevenItems, len(it), size)
		}
	}
	return Message{items: items, itemSize: size}, nil
}

// NumItems returns how many items the message carries.
func (m Message) NumItems() int { return len(m.items) }

// ItemSize returns the uniform byte length of the message's items, zero
// for an empty message.
func (m Message) ItemSize() int { return m.itemSize }

// Encode renders the message as its wire payload: the items concatenated
// with no separators.
func (m Message) Encode() string {
	return strings.Join(m.items, "")
}

// SplitRecords cuts a record payload into slot-size pieces. It rejects a
// payload whose length is not a whole number of slots.
func SplitRecords(payload string, slot int) ([]string, error) {
	if slot <= 0 {
		return nil, fmt.Errorf("protocol: slot size must be positive, got %d", slot)
	}
	if len(payload)%slot != 0 {
		return nil, fmt.Errorf("protocol: payload of %d bytes does not divide into %d-byte records", len(payload), slot)
	}
	var recs []string
	for i := 0; i < len(payload); i += slot {
		recs = append(recs, payload[i:i+slot])
	}
	return recs, nil
}
