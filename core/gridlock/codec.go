package gridlock

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tuneinsight/lattigo/v5/utils/buffer"

	"github.com/KAIST-CryptLab/gridlock/core/field"
)

// Limits enforced when reading, to refuse allocations driven by corrupted
// or hostile length fields.
const (
	MaxVectorLength = 1 << 20
	MaxSampleCount  = 1 << 24
)

// readPrealloc caps the capacity reserved from a length header before the
// announced data has actually been read.
const readPrealloc = 1 << 10

// The binary layout is little-endian uint64 words:
//
//	SecretKey:            p | n | s_0 ... s_{n-1}
//	PublicKey/Ciphertext: p | count | (len(a) | a_0 ... | b) * count
//
// p is 0 for an empty object.

// BinarySize returns the serialized size of the object in bytes.
func (sk SecretKey) BinarySize() int {
	return 16 + len(sk.Value)<<3
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface (see lattigo/utils/buffer/writer.go),
// it will be wrapped into a bufio.Writer.
func (sk SecretKey) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		p := modulusOf(sk.Value)

		var inc int64
		if inc, err = buffer.WriteUint64(w, p); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
		}
		n += inc

		if inc, err = writeVector(w, p, sk.Value); err != nil {
			return n + inc, err
		}
		n += inc

		return n, w.Flush()

	default:
		return sk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see lattigo/utils/buffer/reader.go),
// it will be wrapped into a bufio.Reader.
func (sk *SecretKey) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var f field.Field
		var inc int64
		if f, inc, err = readField(r); err != nil {
			return n + inc, err
		}
		n += inc

		if sk.Value, inc, err = readVector(r, f); err != nil {
			return n + inc, err
		}

		return n + inc, nil

	default:
		return sk.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (sk SecretKey) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(sk.BinarySize())
	_, err = sk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (sk *SecretKey) UnmarshalBinary(p []byte) (err error) {
	_, err = sk.ReadFrom(buffer.NewBuffer(p))
	return
}

// BinarySize returns the serialized size of the object in bytes.
func (pk PublicKey) BinarySize() int {
	return samplesBinarySize(pk.Value)
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
func (pk PublicKey) WriteTo(w io.Writer) (n int64, err error) {
	return writeSamples(w, pk.Value)
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
func (pk *PublicKey) ReadFrom(r io.Reader) (n int64, err error) {
	pk.Value, n, err = readSamples(r)
	return
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (pk PublicKey) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(pk.BinarySize())
	_, err = pk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (pk *PublicKey) UnmarshalBinary(p []byte) (err error) {
	_, err = pk.ReadFrom(buffer.NewBuffer(p))
	return
}

// BinarySize returns the serialized size of the object in bytes.
func (ct Ciphertext) BinarySize() int {
	return samplesBinarySize(ct.Value)
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
func (ct Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	return writeSamples(w, ct.Value)
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	ct.Value, n, err = readSamples(r)
	return
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (ct Ciphertext) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(ct.BinarySize())
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (ct *Ciphertext) UnmarshalBinary(p []byte) (err error) {
	_, err = ct.ReadFrom(buffer.NewBuffer(p))
	return
}

func samplesBinarySize(samples []Sample) (size int) {
	size = 16
	for i := range samples {
		size += 16 + len(samples[i].A)<<3
	}
	return
}

func writeSamples(w io.Writer, samples []Sample) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var p uint64
		if len(samples) > 0 {
			p = samples[0].B.P()
		}

		var inc int64
		if inc, err = buffer.WriteUint64(w, p); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
		}
		n += inc

		if inc, err = buffer.WriteUint64(w, uint64(len(samples))); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
		}
		n += inc

		for i := range samples {

			if inc, err = writeVector(w, p, samples[i].A); err != nil {
				return n + inc, fmt.Errorf("sample %d: %w", i, err)
			}
			n += inc

			if samples[i].B.P() != p {
				return n, fmt.Errorf("sample %d: modulus %d != %d", i, samples[i].B.P(), p)
			}

			if inc, err = buffer.WriteUint64(w, samples[i].B.Uint64()); err != nil {
				return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
			}
			n += inc
		}

		return n, w.Flush()

	default:
		return writeSamples(bufio.NewWriter(w), samples)
	}
}

func readSamples(r io.Reader) (samples []Sample, n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var f field.Field
		var inc int64
		if f, inc, err = readField(r); err != nil {
			return nil, n + inc, err
		}
		n += inc

		var count uint64
		if count, inc, err = readUint64(r); err != nil {
			return nil, n + inc, err
		}
		n += inc

		if count > MaxSampleCount {
			return nil, n, fmt.Errorf("sample count %d exceeds %d", count, MaxSampleCount)
		}

		samples = make([]Sample, 0, min(count, readPrealloc))
		for i := uint64(0); i < count; i++ {

			var s Sample
			if s.A, inc, err = readVector(r, f); err != nil {
				return nil, n + inc, fmt.Errorf("sample %d: %w", i, err)
			}
			n += inc

			if s.B, inc, err = readElement(r, f); err != nil {
				return nil, n + inc, fmt.Errorf("sample %d: %w", i, err)
			}
			n += inc

			samples = append(samples, s)
		}

		return samples, n, nil

	default:
		return readSamples(bufio.NewReader(r))
	}
}

func modulusOf(v []field.Element) uint64 {
	if len(v) == 0 {
		return 0
	}
	return v[0].P()
}

func writeVector(w buffer.Writer, p uint64, v []field.Element) (n int64, err error) {

	var inc int64
	if inc, err = buffer.WriteUint64(w, uint64(len(v))); err != nil {
		return inc, fmt.Errorf("buffer.WriteUint64: %w", err)
	}
	n += inc

	raw := make([]uint64, len(v))
	for i, e := range v {
		if e.P() != p {
			return n, fmt.Errorf("element %d: modulus %d != %d", i, e.P(), p)
		}
		raw[i] = e.Uint64()
	}

	if inc, err = buffer.WriteUint64Slice(w, raw); err != nil {
		return n + inc, fmt.Errorf("buffer.WriteUint64Slice: %w", err)
	}

	return n + inc, nil
}

func readUint64(r buffer.Reader) (c uint64, n int64, err error) {
	inc, err := buffer.ReadUint64(r, &c)
	if err != nil {
		return 0, int64(inc), fmt.Errorf("buffer.ReadUint64: %w", err)
	}
	return c, int64(inc), nil
}

// readField reads the modulus header. A zero modulus announces an empty
// object and yields the zero Field, which is never used to build elements.
func readField(r buffer.Reader) (f field.Field, n int64, err error) {

	var p uint64
	if p, n, err = readUint64(r); err != nil {
		return
	}

	if p == 0 {
		return
	}

	if f, err = field.NewField(p); err != nil {
		return f, n, fmt.Errorf("field.NewField: %w", err)
	}

	return
}

func readElement(r buffer.Reader, f field.Field) (e field.Element, n int64, err error) {

	var c uint64
	if c, n, err = readUint64(r); err != nil {
		return
	}

	if c >= f.P() {
		return e, n, fmt.Errorf("representative %d out of range [0, %d)", c, f.P())
	}

	return f.NewElement(c), n, nil
}

func readVector(r buffer.Reader, f field.Field) (v []field.Element, n int64, err error) {

	var size, inc int64
	var size64 uint64
	if size64, inc, err = readUint64(r); err != nil {
		return nil, inc, err
	}
	n += inc

	if size64 > MaxVectorLength {
		return nil, n, fmt.Errorf("vector length %d exceeds %d", size64, MaxVectorLength)
	}
	size = int64(size64)

	if size > 0 && f.P() == 0 {
		return nil, n, fmt.Errorf("non-empty vector with zero modulus")
	}

	v = make([]field.Element, 0, min(size, readPrealloc))
	for i := int64(0); i < size; i++ {
		var e field.Element
		if e, inc, err = readElement(r, f); err != nil {
			return nil, n + inc, fmt.Errorf("element %d: %w", i, err)
		}
		n += inc
		v = append(v, e)
	}

	return v, n, nil
}
