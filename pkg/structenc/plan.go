package structenc

import (
	"fmt"
	"strings"
)

// StepKind is the action of a plan step.
type StepKind uint8

const (
	// StepScalar copies Count elements of Width bytes, reversing each.
	StepScalar StepKind = iota
	// StepBytes copies Count bytes verbatim.
	StepBytes
	// StepSkip passes over Count bytes of padding.
	StepSkip
)

// String returns the step name.
func (k StepKind) String() string {
	switch k {
	case StepScalar:
		return "SCALAR"
	case StepBytes:
		return "BYTES"
	case StepSkip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Step is one instruction of a Plan.
type Step struct {
	Count int
	Kind  StepKind
	Width int
}

// bytes returns the number of bytes the step covers.
func (s Step) bytes() int {
	if s.Kind == StepScalar {
		return s.Count * s.Width
	}
	return s.Count
}

// Plan is a compiled Layout for one byte order.
type Plan struct {
	Size    int
	Reverse bool
	Steps   []Step
}

// String renders the plan as "SCALAR 32x4, SKIP 24, ...".
func (p *Plan) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		if s.Kind == StepScalar {
			parts[i] = fmt.Sprintf("%s %dx%d", s.Kind, s.Count, s.Width)
		} else {
			parts[i] = fmt.Sprintf("%s %d", s.Kind, s.Count)
		}
	}
	return strings.Join(parts, ", ")
}

// Compile builds the plan for l. With reverse false the plan is a single
// verbatim copy of the whole record.
func (l *Layout) Compile(reverse bool) (*Plan, error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	p := &Plan{Size: l.Size, Reverse: reverse}
	if !reverse {
		if l.Size > 0 {
			p.Steps = []Step{{Count: l.Size, Kind: StepBytes, Width: 1}}
		}
		return p, nil
	}
	p.Steps = l.steps(nil)
	return p, nil
}

// steps appends the reversing steps of l to dst.
func (l *Layout) steps(dst []Step) []Step {
	pos := 0
	for _, f := range l.Fields {
		if gap := f.Offset - pos; gap > 0 {
			dst = appendStep(dst, Step{Count: gap, Kind: StepSkip, Width: 1})
		}
		switch {
		case f.Kind == FieldNested:
			for i := 0; i < f.Count; i++ {
				dst = f.Layout.steps(dst)
			}
		case f.Kind == FieldBytes || f.Width == 1:
			dst = appendStep(dst, Step{Count: f.Count * f.Width, Kind: StepBytes, Width: 1})
		default:
			dst = appendStep(dst, Step{Count: f.Count, Kind: StepScalar, Width: f.Width})
		}
		pos = f.Offset + f.size()
	}
	if gap := l.Size - pos; gap > 0 {
		dst = appendStep(dst, Step{Count: gap, Kind: StepSkip, Width: 1})
	}
	return dst
}

// appendStep appends s, merging it into the last step when both have the
// same kind and width.
func appendStep(dst []Step, s Step) []Step {
	if n := len(dst); n > 0 {
		last := &dst[n-1]
		if last.Kind == s.Kind && last.Width == s.Width {
			last.Count += s.Count
			return dst
		}
	}
	return append(dst, s)
}

// decode runs the plan over buf in place.
func (p *Plan) decode(buf []byte) {
	if !p.Reverse {
		return
	}
	off := 0
	for _, s := range p.Steps {
		n := s.bytes()
		if s.Kind == StepScalar {
			reverseStride(buf[off:off+n], s.Width)
		}
		off += n
	}
}

// encode runs the plan over buf in place, zeroing padding.
func (p *Plan) encode(buf []byte) {
	if !p.Reverse {
		return
	}
	off := 0
	for _, s := range p.Steps {
		n := s.bytes()
		switch s.Kind {
		case StepScalar:
			reverseStride(buf[off:off+n], s.Width)
		case StepSkip:
			clear(buf[off : off+n])
		}
		off += n
	}
}
