package wav

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.25, -0.25, 1, -1, 0.123}
	raw := Encode(in, 44100, 1)

	buf, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", buf.SampleRate)
	}
	if buf.Channels != 1 {
		t.Errorf("Channels = %d, want 1", buf.Channels)
	}
	if len(buf.Samples) != len(in) {
		t.Fatalf("sample count = %d, want %d", len(buf.Samples), len(in))
	}
	// 16-bit quantization error bound.
	const eps = 1.0 / 32767
	for i := range in {
		if diff := math.Abs(float64(buf.Samples[i] - in[i])); diff > eps {
			t.Errorf("sample %d = %v, want %v (diff %v)", i, buf.Samples[i], in[i], diff)
		}
	}
}

func TestEncodeClampsOutOfRange(t *testing.T) {
	raw := EncodeData([]float32{2.0, -3.0})
	hi := int16(binary.LittleEndian.Uint16(raw[0:2]))
	lo := int16(binary.LittleEndian.Uint16(raw[2:4]))
	if hi != 32767 {
		t.Errorf("clamped high sample = %d, want 32767", hi)
	}
	if lo != -32767 {
		t.Errorf("clamped low sample = %d, want -32767", lo)
	}
}

func TestHeaderLayout(t *testing.T) {
	h := Header(1000, 44100, 2)
	if len(h) != 44 {
		t.Fatalf("header length = %d, want 44", len(h))
	}
	if string(h[0:4]) != "RIFF" || string(h[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if string(h[12:16]) != "fmt " || string(h[36:40]) != "data" {
		t.Error("missing fmt/data chunk ids")
	}
	if got := binary.LittleEndian.Uint32(h[4:8]); got != 1036 {
		t.Errorf("riff size = %d, want 1036", got)
	}
	if got := binary.LittleEndian.Uint16(h[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(h[22:24]); got != 2 {
		t.Errorf("channels = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(h[24:28]); got != 44100 {
		t.Errorf("sample rate = %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint32(h[28:32]); got != 44100*2*2 {
		t.Errorf("byte rate = %d, want %d", got, 44100*2*2)
	}
	if got := binary.LittleEndian.Uint16(h[32:34]); got != 4 {
		t.Errorf("block align = %d, want 4", got)
	}
	if got := binary.LittleEndian.Uint16(h[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(h[40:44]); got != 1000 {
		t.Errorf("data size = %d, want 1000", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("not a wav file"),
		append([]byte("RIFX"), make([]byte, 60)...),
	}
	for i, raw := range cases {
		if _, err := Decode(raw); !errors.Is(err, ErrDecode) {
			t.Errorf("case %d: err = %v, want ErrDecode", i, err)
		}
	}
}

func TestDecodeRejectsNonPCM(t *testing.T) {
	raw := Encode([]float32{0, 0}, 44100, 1)
	// Flip the format field to IEEE float (3).
	binary.LittleEndian.PutUint16(raw[20:22], 3)
	if _, err := Decode(raw); !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestFirstChannel(t *testing.T) {
	b := &Buffer{
		Samples:  []float32{0.1, 0.9, 0.2, 0.8, 0.3, 0.7},
		Channels: 2,
	}
	mono := b.FirstChannel()
	want := []float32{0.1, 0.2, 0.3}
	if len(mono) != len(want) {
		t.Fatalf("mono length = %d, want %d", len(mono), len(want))
	}
	for i := range want {
		if mono[i] != want[i] {
			t.Errorf("mono[%d] = %v, want %v", i, mono[i], want[i])
		}
	}
}

func TestDuration(t *testing.T) {
	b := &Buffer{Samples: make([]float32, 44100*2), SampleRate: 44100, Channels: 2}
	if d := b.Duration(); math.Abs(d-1.0) > 1e-9 {
		t.Errorf("Duration = %v, want 1.0", d)
	}
}
