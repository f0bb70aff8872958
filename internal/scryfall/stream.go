package scryfall

import (
	"encoding/json"
	"fmt"
	"io"
)

// CardDecoder pulls card records one at a time from a bulk card feed
// (a single huge JSON array), so a caller can stream a multi-hundred-
// megabyte file without holding it in memory.
type CardDecoder struct {
	dec     *json.Decoder
	started bool
	n       int
}

// NewCardDecoder creates a decoder reading from r.
func NewCardDecoder(r io.Reader) *CardDecoder {
	return &CardDecoder{dec: json.NewDecoder(r)}
}

// Count returns the number of records decoded so far.
func (d *CardDecoder) Count() int { return d.n }

// Next returns the next card record, or io.EOF after the closing bracket.
func (d *CardDecoder) Next() (*Card, error) {
	if !d.started {
		if err := expectDelim(d.dec, '['); err != nil {
			return nil, err
		}
		d.started = true
	}

	if !d.dec.More() {
		if err := expectDelim(d.dec, ']'); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var card Card
	if err := d.dec.Decode(&card); err != nil {
		return nil, fmt.Errorf("decode card %d: %w", d.n, err)
	}
	d.n++
	return &card, nil
}

// ForEachCard streams a bulk card feed, calling fn for every record.
// Decoding stops at the first error from fn. Returns the number of records
// handed to fn.
func ForEachCard(r io.Reader, fn func(*Card) error) (int, error) {
	dec := NewCardDecoder(r)
	for {
		card, err := dec.Next()
		if err == io.EOF {
			return dec.Count(), nil
		}
		if err != nil {
			return dec.Count(), err
		}
		if err := fn(card); err != nil {
			return dec.Count(), err
		}
	}
}

// DecodeSets reads a sets listing. Both the raw array form and the API's
// {"data": [...]} envelope are accepted.
func DecodeSets(r io.Reader) ([]Set, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read sets listing: %w", err)
	}

	switch d := tok.(type) {
	case json.Delim:
		if d == '[' {
			return decodeSetArray(dec)
		}
		if d != '{' {
			return nil, fmt.Errorf("sets listing: unexpected %v", d)
		}
	default:
		return nil, fmt.Errorf("sets listing: unexpected token %v", tok)
	}

	// Envelope form: scan for the data key, decode its array.
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read sets listing: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("sets listing: unexpected key %v", keyTok)
		}
		if key != "data" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("skip sets field %q: %w", key, err)
			}
			continue
		}
		var sets []Set
		if err := dec.Decode(&sets); err != nil {
			return nil, fmt.Errorf("decode sets data: %w", err)
		}
		return sets, nil
	}
	return nil, fmt.Errorf("sets listing: no data field")
}

func decodeSetArray(dec *json.Decoder) ([]Set, error) {
	var sets []Set
	for dec.More() {
		var s Set
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode set %d: %w", len(sets), err)
		}
		sets = append(sets, s)
	}
	return sets, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read feed: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("feed: expected %q, got %v", want, tok)
	}
	return nil
}
