// Package rowjson writes converted rows as JSON.
//
// Values are written by kind: UUIDs as canonical strings, bytes as base64,
// decimals as strings so no precision is lost, date-times as RFC 3339 and
// non-finite floats as "NaN", "+Inf" or "-Inf".
package rowjson

import (
	"encoding/base64"
	"io"
	"math"
	"time"

	"github.com/JonMunkholm/csvcell/internal/core"
	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Encoder writes rows to an io.Writer.
type Encoder struct {
	stream *jsoniter.Stream
}

// NewEncoder returns an Encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{stream: jsoniter.NewStream(api, w, 4096)}
}

// WriteRow writes one row object without a trailing newline.
func (e *Encoder) WriteRow(row core.Row) {
	writeRow(e.stream, row)
}

// WriteLine writes one row object followed by a newline, for JSON lines output.
func (e *Encoder) WriteLine(row core.Row) error {
	writeRow(e.stream, row)
	e.stream.WriteRaw("\n")
	if e.stream.Buffered() > 64*1024 {
		return e.Flush()
	}
	return e.stream.Error
}

// Stream exposes the underlying stream for callers composing larger documents.
func (e *Encoder) Stream() *jsoniter.Stream {
	return e.stream
}

// Flush writes buffered output.
func (e *Encoder) Flush() error {
	if err := e.stream.Flush(); err != nil {
		return err
	}
	return e.stream.Error
}

func writeRow(s *jsoniter.Stream, row core.Row) {
	s.WriteObjectStart()
	s.WriteObjectField("line")
	s.WriteInt(row.Line)
	s.WriteMore()
	s.WriteObjectField("valid")
	s.WriteBool(row.Valid())
	s.WriteMore()
	s.WriteObjectField("cells")
	s.WriteArrayStart()
	for i, cell := range row.Cells {
		if i > 0 {
			s.WriteMore()
		}
		writeCell(s, cell)
	}
	s.WriteArrayEnd()
	if len(row.Errors) > 0 {
		s.WriteMore()
		s.WriteObjectField("errors")
		s.WriteArrayStart()
		for i, err := range row.Errors {
			if i > 0 {
				s.WriteMore()
			}
			s.WriteString(err.Error())
		}
		s.WriteArrayEnd()
	}
	s.WriteObjectEnd()
}

func writeCell(s *jsoniter.Stream, cell core.Cell) {
	s.WriteObjectStart()
	s.WriteObjectField("column")
	s.WriteString(cell.Column)
	s.WriteMore()
	s.WriteObjectField("kind")
	s.WriteString(cell.Kind.String())
	s.WriteMore()
	s.WriteObjectField("raw")
	s.WriteString(cell.Raw)
	s.WriteMore()
	s.WriteObjectField("value")
	WriteValue(s, cell.Value)
	s.WriteMore()
	s.WriteObjectField("ok")
	s.WriteBool(cell.OK)
	s.WriteObjectEnd()
}

// WriteValue writes a single converted value.
func WriteValue(s *jsoniter.Stream, v core.Value) {
	switch v := v.(type) {
	case nil:
		s.WriteNil()
	case core.ValueText:
		s.WriteString(v.Val)
	case core.ValueUUID:
		s.WriteString(v.Val.String())
	case core.ValueBytes:
		s.WriteString(base64.StdEncoding.EncodeToString(v.Val))
	case core.ValueInt32:
		s.WriteInt32(v.Val)
	case core.ValueInt64:
		s.WriteInt64(v.Val)
	case core.ValueFloat32:
		writeFloat(s, float64(v.Val), 32)
	case core.ValueFloat64:
		writeFloat(s, v.Val, 64)
	case core.ValueDecimal:
		s.WriteString(v.Val.String())
	case core.ValueDateTime:
		s.WriteString(v.Val.Format(time.RFC3339Nano))
	default:
		s.WriteVal(v.Value())
	}
}

func writeFloat(s *jsoniter.Stream, f float64, bits int) {
	switch {
	case math.IsNaN(f):
		s.WriteString("NaN")
	case math.IsInf(f, 1):
		s.WriteString("+Inf")
	case math.IsInf(f, -1):
		s.WriteString("-Inf")
	case bits == 32:
		s.WriteFloat32(float32(f))
	default:
		s.WriteFloat64(f)
	}
}
