// Package wav reads and writes uncompressed 16-bit PCM WAV files.
//
// The layout is the classic RIFF container: a "fmt " subchunk describing
// PCM parameters followed by a "data" subchunk of interleaved
// little-endian int16 samples. Downstream tooling depends on this exact
// byte layout, so nothing optional is written.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// ErrDecode reports a file that is not a readable PCM WAV.
var ErrDecode = errors.New("wav: decode failure")

const (
	headerSize    = 44
	bitsPerSample = 16
)

// Buffer is a decoded PCM buffer. Samples are interleaved float values
// in [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 || b.Channels == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.Channels) / float64(b.SampleRate)
}

// FirstChannel extracts channel 0 as a mono sample slice. A mono buffer
// is returned as-is.
func (b *Buffer) FirstChannel() []float32 {
	if b.Channels <= 1 {
		return b.Samples
	}
	mono := make([]float32, 0, len(b.Samples)/b.Channels)
	for i := 0; i+b.Channels <= len(b.Samples); i += b.Channels {
		mono = append(mono, b.Samples[i])
	}
	return mono
}

// Encode renders interleaved float samples as a complete WAV file.
// Samples outside [-1, 1] are clamped.
func Encode(samples []float32, sampleRate, channels int) []byte {
	data := EncodeData(samples)
	out := make([]byte, 0, headerSize+len(data))
	out = append(out, Header(len(data), sampleRate, channels)...)
	out = append(out, data...)
	return out
}

// EncodeData converts float samples to the raw interleaved little-endian
// int16 payload of a data subchunk, without any header.
func EncodeData(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// Header builds the 44-byte RIFF header for a data payload of dataLen
// bytes.
func Header(dataLen, sampleRate, channels int) []byte {
	h := make([]byte, headerSize)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // audio format: PCM
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen))
	return h
}

// Decode parses a PCM WAV file from memory.
func Decode(raw []byte) (*Buffer, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrDecode, len(raw))
	}
	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE magic", ErrDecode)
	}

	// Walk subchunks; fmt and data may be separated by extension chunks.
	var (
		sampleRate int
		channels   int
		bits       int
		data       []byte
		haveFmt    bool
	)
	pos := 12
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(raw) {
			size = len(raw) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk truncated", ErrDecode)
			}
			format := binary.LittleEndian.Uint16(raw[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("%w: unsupported audio format %d (want PCM)", ErrDecode, format)
			}
			channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			haveFmt = true
		case "data":
			data = raw[body : body+size]
		}
		// Chunks are word-aligned.
		pos = body + size + size%2
	}

	if !haveFmt || data == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrDecode)
	}
	if bits != bitsPerSample {
		return nil, fmt.Errorf("%w: %d-bit samples not supported", ErrDecode, bits)
	}
	if channels < 1 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid fmt (channels=%d rate=%d)", ErrDecode, channels, sampleRate)
	}

	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		samples[i] = float32(v) / 32767
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// DecodeFile reads and parses a WAV file from disk.
func DecodeFile(path string) (*Buffer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Decode(raw)
}
