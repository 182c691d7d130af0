package audio

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// micSource captures the host microphone through PortAudio as a mono
// float32 stream.
type micSource struct {
	deviceID string
	stream   *portaudio.Stream
}

// NewMicSource creates a PortAudio-backed Source for the named input
// device. An empty deviceID selects the system default input.
func NewMicSource(deviceID string) (Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &micSource{deviceID: deviceID}, nil
}

func (m *micSource) Channels() int { return 1 }

func (m *micSource) Start(ctx context.Context, sampleRate int, out chan<- []float32) error {
	device, err := findInputDevice(m.deviceID)
	if err != nil {
		return err
	}

	buffer := make([]float32, 512)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: len(buffer),
	}, buffer)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	m.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	go func() {
		defer stream.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := stream.Read(); err != nil {
					return
				}
				frame := make([]float32, len(buffer))
				copy(frame, buffer)

				select {
				case out <- frame:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (m *micSource) Close() error {
	if m.stream != nil {
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

func findInputDevice(deviceID string) (*portaudio.DeviceInfo, error) {
	if deviceID == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == deviceID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", deviceID)
}

// ListInputDevices enumerates every device with input channels.
// PortAudio must already be initialized (NewMicSource does this).
func ListInputDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]Device, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, Device{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}
	return result, nil
}
