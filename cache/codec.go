package cache

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/always-cache/accelerator/header"
)

// record is the persisted form of an Entry.
type record struct {
	URL            string
	Discriminators Discriminators
	Expires        time.Time
	Status         string
	Header         header.Fields
	Body           [][]byte
	Extras         Extras
}

func encodeEntry(e Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(record(e)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEntry(b []byte) (Entry, error) {
	var r record
	dec := gob.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&r); err != nil {
		return Entry{}, err
	}
	return Entry(r), nil
}
