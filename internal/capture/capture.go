// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package capture records FET telemetry snapshots to a file as a stream of
// CBOR records, and reads them back.
package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/YukiHonma/sakura/pkg/fets"
)

// Record is one telemetry change seen on the bus
type Record struct {
	Time    time.Time `cbor:"0,keyasint"`
	Device  string    `cbor:"1,keyasint,omitempty"`
	Address uint8     `cbor:"2,keyasint"`
	Output  uint8     `cbor:"3,keyasint"`
	Input   uint8     `cbor:"4,keyasint"`
	Drained uint64    `cbor:"5,keyasint"` // bytes drained since the previous record
}

// Telemetry returns the snapshot carried by the record
func (r Record) Telemetry() fets.Telemetry {
	return fets.Telemetry{Output: r.Output, Input: r.Input}
}

var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("capture: cbor encoder options: %v", err))
	}
}

// Writer appends records to a capture stream
type Writer struct {
	enc   *cbor.Encoder
	count int
}

// NewWriter creates a writer on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: encMode.NewEncoder(w)}
}

// Write encodes one record
func (w *Writer) Write(r Record) error {
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("capture: encode record %d: %w", w.count, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written
func (w *Writer) Count() int {
	return w.count
}

// Reader reads records from a capture stream
type Reader struct {
	dec   *cbor.Decoder
	count int
}

// NewReader creates a reader on r
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("capture: decode record %d: %w", r.count, err)
	}
	r.count++
	return rec, nil
}

// ReadAll reads every remaining record
func ReadAll(r io.Reader) ([]Record, error) {
	cr := NewReader(r)
	var records []Record
	for {
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
