// Package text writes metric families in the Prometheus text exposition format (0.0.4).
package text

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/internal/pool"
	"github.com/ygrebnov/metrics/v2/label"
)

// ContentType is the media type of the output.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// DefaultFlushThreshold is the buffered size above which samples are written through.
const DefaultFlushThreshold = 32 * 1024

// Encoder buffers exposition text and writes it to an io.Writer.
// It is not safe for concurrent use.
type Encoder struct {
	w       io.Writer
	buf     *pool.ByteBuffer
	flushAt int
	labels  labelWriter
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithFlushThreshold sets the buffered size above which output is written through
// before Flush. n <= 0 buffers everything until Flush.
func WithFlushThreshold(n int) Option {
	return func(e *Encoder) { e.flushAt = n }
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	e := &Encoder{w: w, flushAt: DefaultFlushThreshold}
	for _, o := range opts {
		if o != nil {
			o(e)
		}
	}
	return e
}

func (e *Encoder) buffer() *pool.ByteBuffer {
	if e.buf == nil {
		e.buf = pool.GetEncodeBuffer()
	}
	return e.buf
}

func (e *Encoder) maybeFlush() error {
	if e.flushAt > 0 && e.buf != nil && e.buf.Len() >= e.flushAt {
		_, err := e.buf.WriteTo(e.w)
		return err
	}
	return nil
}

// Flush writes buffered output and releases the buffer.
func (e *Encoder) Flush() error {
	if e.buf == nil {
		return nil
	}
	_, err := e.buf.WriteTo(e.w)
	pool.PutEncodeBuffer(e.buf)
	e.buf = nil
	return err
}

// WriteFamily implements exposition.Encoder. Every family gets a HELP line, without
// trailing text when the help is empty; the unit is not part of this format.
func (e *Encoder) WriteFamily(desc exposition.FamilyDesc) error {
	b := e.buffer()
	b.B = append(b.B, "# HELP "...)
	b.B = append(b.B, desc.Name...)
	if desc.Help != "" {
		b.B = append(b.B, ' ')
		b.B = appendEscaped(b.B, desc.Help, false)
	}
	b.B = append(b.B, '\n')
	b.B = append(b.B, "# TYPE "...)
	b.B = append(b.B, desc.Name...)
	b.B = append(b.B, ' ')
	b.B = append(b.B, desc.Type.String()...)
	b.B = append(b.B, '\n')
	return e.maybeFlush()
}

func (e *Encoder) WriteCounter(name string, labels label.Group, v uint64) error {
	b := e.startSample(name, "", labels, "")
	b.B = strconv.AppendUint(b.B, v, 10)
	b.B = append(b.B, '\n')
	return e.maybeFlush()
}

func (e *Encoder) WriteGauge(name string, labels label.Group, v int64) error {
	b := e.startSample(name, "", labels, "")
	b.B = strconv.AppendInt(b.B, v, 10)
	b.B = append(b.B, '\n')
	return e.maybeFlush()
}

func (e *Encoder) WriteGaugeFloat(name string, labels label.Group, v float64) error {
	b := e.startSample(name, "", labels, "")
	b.B = appendFloat(b.B, v)
	b.B = append(b.B, '\n')
	return e.maybeFlush()
}

// WriteHistogram writes one _bucket line per threshold, then _sum and _count.
func (e *Encoder) WriteHistogram(name string, labels label.Group, h exposition.HistogramPoint) error {
	var le []byte
	for i, bound := range h.Thresholds {
		le = appendFloat(le[:0], bound)
		b := e.startSample(name, "_bucket", labels, string(le))
		b.B = strconv.AppendUint(b.B, h.Buckets[i], 10)
		b.B = append(b.B, '\n')
	}
	b := e.startSample(name, "_sum", labels, "")
	b.B = appendFloat(b.B, h.Sum)
	b.B = append(b.B, '\n')
	b = e.startSample(name, "_count", labels, "")
	b.B = strconv.AppendUint(b.B, h.Count, 10)
	b.B = append(b.B, '\n')
	return e.maybeFlush()
}

// startSample writes "<name><suffix>{labels} " and returns the buffer.
// le, when set, is appended as the last label.
func (e *Encoder) startSample(name, suffix string, labels label.Group, le string) *pool.ByteBuffer {
	b := e.buffer()
	b.B = append(b.B, name...)
	b.B = append(b.B, suffix...)

	e.labels.b = b
	e.labels.n = 0
	if labels != nil {
		labels.VisitLabels(&e.labels)
	}
	if le != "" {
		e.labels.WriteLabel("le", label.String(le))
	}
	if e.labels.n > 0 {
		b.B = append(b.B, '}')
	}
	e.labels.b = nil
	b.B = append(b.B, ' ')
	return b
}

// labelWriter renders label pairs; it is also the value visitor.
type labelWriter struct {
	b *pool.ByteBuffer
	n int
}

func (l *labelWriter) WriteLabel(name string, value label.Value) {
	if l.n == 0 {
		l.b.B = append(l.b.B, '{')
	} else {
		l.b.B = append(l.b.B, ',')
	}
	l.n++
	l.b.B = append(l.b.B, name...)
	l.b.B = append(l.b.B, '=', '"')
	value.Visit(l)
	l.b.B = append(l.b.B, '"')
}

func (l *labelWriter) WriteInt(v int64)     { l.b.B = strconv.AppendInt(l.b.B, v, 10) }
func (l *labelWriter) WriteFloat(v float64) { l.b.B = appendFloat(l.b.B, v) }
func (l *labelWriter) WriteStr(v string)    { l.b.B = appendEscaped(l.b.B, v, true) }

// appendFloat uses the shortest representation that round-trips.
func appendFloat(b []byte, v float64) []byte {
	switch {
	case math.IsInf(v, 1):
		return append(b, "+Inf"...)
	case math.IsInf(v, -1):
		return append(b, "-Inf"...)
	case math.IsNaN(v):
		return append(b, "NaN"...)
	}
	return strconv.AppendFloat(b, v, 'g', -1, 64)
}

// appendEscaped escapes backslash and newline, and double quotes when quoted is set.
func appendEscaped(b []byte, s string, quoted bool) []byte {
	if !strings.ContainsAny(s, "\\\n\"") {
		return append(b, s...)
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			b = append(b, `\\`...)
		case c == '\n':
			b = append(b, `\n`...)
		case c == '"' && quoted:
			b = append(b, `\"`...)
		default:
			b = append(b, c)
		}
	}
	return b
}

var _ exposition.Encoder = (*Encoder)(nil)
