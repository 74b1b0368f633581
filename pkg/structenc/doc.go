// Package structenc decodes and encodes fixed-size records whose byte order
// may differ from the host's.
//
// A record type is described once by a declarative Layout: an ordered list
// of fields, each with a byte offset and either a scalar width, a fixed
// element count, a raw byte run or a nested layout. Register binds a Go type
// to its Layout. The first Decode or Encode of a type in a given byte order
// compiles the layout into a Plan (a short list of copy, reverse and skip
// steps) that is cached for the life of the process.
//
//	var contextLayout = &structenc.Layout{
//		Name: "context",
//		Size: 0x1B0,
//		Fields: []structenc.Field{
//			structenc.Array("gpr", 0x00, 4, 32),
//			structenc.Scalar("cr", 0x80, 4),
//			structenc.Array("fpr", 0xB0, 8, 32),
//		},
//	}
//
//	structenc.MustRegister[Context](contextLayout)
//	ctx, err := structenc.Decode[Context](structenc.NewReader(r, binary.BigEndian))
//
// When the requested byte order matches the host, the plan collapses to a
// single verbatim copy. Otherwise scalars are reversed in place with
// width-specialised routines for 2, 4 and 8 byte strides.
//
// Register checks every layout field against the Go type: a scalar must
// sit on a Go field of the same width, and every multi-byte Go field must
// be described by a scalar or covered by a byte run. Undescribed single
// bytes are treated as padding.
//
// Registered types must be free of pointers: no strings, slices, maps,
// interfaces, channels or funcs, at any depth. Decoding writes raw bytes
// into the value.
package structenc
