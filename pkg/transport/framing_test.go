package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

func TestFrameWriterReader(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "small message", payload: []byte("hello")},
		{name: "medium message", payload: bytes.Repeat([]byte("x"), 1000)},
		{name: "max size message", payload: bytes.Repeat([]byte("y"), DefaultMaxMessageSize)},
		{name: "single byte", payload: []byte{0x42}},
		{name: "binary data", payload: []byte{0x00, 0xFF, 0x7F, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)

			writer := NewFrameWriter(buf)
			if err := writer.WriteFrame(tt.payload); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}

			if want := FrameSize(len(tt.payload)); buf.Len() != want {
				t.Errorf("frame size = %d, want %d", buf.Len(), want)
			}

			got, err := NewFrameReader(buf).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d bytes", len(got), len(tt.payload))
			}
		})
	}
}

func TestFrameErrors(t *testing.T) {
	lengthPrefix := func(n uint32) []byte {
		var b [LengthPrefixSize]byte
		binary.BigEndian.PutUint32(b[:], n)
		return b[:]
	}

	t.Run("WriteEmpty", func(t *testing.T) {
		w := NewFrameWriter(new(bytes.Buffer))
		if err := w.WriteFrame(nil); !errors.Is(err, ErrMessageEmpty) {
			t.Errorf("expected ErrMessageEmpty, got %v", err)
		}
	})

	t.Run("WriteTooLarge", func(t *testing.T) {
		w := NewFrameWriterWithMaxSize(new(bytes.Buffer), 100)
		if err := w.WriteFrame(bytes.Repeat([]byte("x"), 101)); !errors.Is(err, ErrMessageTooLarge) {
			t.Errorf("expected ErrMessageTooLarge, got %v", err)
		}
	})

	tests := []struct {
		name    string
		input   []byte
		maxSize uint32
		wantErr error
	}{
		{name: "too large", input: append(lengthPrefix(1000), bytes.Repeat([]byte("x"), 1000)...), maxSize: 100, wantErr: ErrMessageTooLarge},
		{name: "zero length", input: lengthPrefix(0), maxSize: DefaultMaxMessageSize, wantErr: ErrMessageEmpty},
		{name: "truncated length", input: []byte{0x00, 0x01}, maxSize: DefaultMaxMessageSize, wantErr: ErrFrameTruncated},
		{name: "truncated payload", input: append(lengthPrefix(100), bytes.Repeat([]byte("x"), 50)...), maxSize: DefaultMaxMessageSize, wantErr: ErrFrameTruncated},
		{name: "eof", input: nil, maxSize: DefaultMaxMessageSize, wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFrameReaderWithMaxSize(bytes.NewReader(tt.input), tt.maxSize)
			if _, err := r.ReadFrame(); !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMultipleEnvelopes(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewFrameWriter(buf)
	r := NewFrameReader(buf)

	envs := []*wire.Envelope{
		{Name: "timer", State: true, Payload: []byte("alarm")},
		{Name: "headphones", State: false},
		{Name: "timer", State: false, Payload: []byte("alarm")},
	}
	for _, env := range envs {
		if err := w.WriteEnvelope(env); err != nil {
			t.Fatalf("WriteEnvelope failed: %v", err)
		}
	}

	for i, want := range envs {
		got, err := r.ReadEnvelope()
		if err != nil {
			t.Fatalf("ReadEnvelope %d failed: %v", i, err)
		}
		if got.Name != want.Name || got.State != want.State || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("envelope %d = %+v, want %+v", i, got, want)
		}
	}

	if _, err := r.ReadEnvelope(); err != io.EOF {
		t.Errorf("expected EOF after all envelopes, got %v", err)
	}
}

func TestWriteEnvelopeRejectsInvalid(t *testing.T) {
	w := NewFrameWriter(new(bytes.Buffer))
	if err := w.WriteEnvelope(&wire.Envelope{}); !errors.Is(err, wire.ErrEmptyName) {
		t.Errorf("WriteEnvelope() error = %v, want ErrEmptyName", err)
	}
}

func BenchmarkFrameWrite(b *testing.B) {
	buf := new(bytes.Buffer)
	writer := NewFrameWriter(buf)
	payload := bytes.Repeat([]byte("x"), 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		writer.WriteFrame(payload)
	}
}
