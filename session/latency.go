package session

import (
	"fmt"
	"time"
)

// LatencyClass is a coarse latency preference that maps to an IO buffer size.
type LatencyClass string

const (
	LatencyLow    LatencyClass = "low"    // prioritize minimal latency (smaller buffers)
	LatencyMedium LatencyClass = "medium" // balanced default
	LatencyHigh   LatencyClass = "high"   // prioritize stability (larger buffers)
)

// fallbackSampleRate is used when the hardware does not report a rate yet,
// which is the case before the first activation.
const fallbackSampleRate = 48000

// MapLatencyToBuffer maps a LatencyClass to a buffer size in frames.
func MapLatencyToBuffer(c LatencyClass) int {
	switch c {
	case LatencyLow:
		return 128
	case LatencyHigh:
		return 1024
	case LatencyMedium:
		fallthrough
	default:
		return 256
	}
}

// ParseLatencyClass accepts low, medium or high. The empty string is medium.
func ParseLatencyClass(s string) (LatencyClass, error) {
	switch c := LatencyClass(normalize(s)); c {
	case "":
		return LatencyMedium, nil
	case LatencyLow, LatencyMedium, LatencyHigh:
		return c, nil
	default:
		return "", fmt.Errorf("avfaudio: unknown latency class %q", s)
	}
}

// BufferDuration converts a frame count at sampleRate into the duration
// AVAudioSession expects for its preferred IO buffer. A non-positive rate
// falls back to 48 kHz.
func BufferDuration(frames int, sampleRate float64) time.Duration {
	if sampleRate <= 0 {
		sampleRate = fallbackSampleRate
	}
	return time.Duration(float64(frames) / sampleRate * float64(time.Second))
}

// Hardware is what the OS reports for the current route.
type Hardware struct {
	SampleRate                float64       `json:"sample_rate"`
	PreferredSampleRate       float64       `json:"preferred_sample_rate"`
	IOBufferDuration          time.Duration `json:"io_buffer_duration"`
	PreferredIOBufferDuration time.Duration `json:"preferred_io_buffer_duration"`
	OutputLatency             time.Duration `json:"output_latency"`
	InputLatency              time.Duration `json:"input_latency"`
}

// BufferFrames returns the current IO buffer size in frames.
func (h Hardware) BufferFrames() int {
	if h.SampleRate <= 0 {
		return 0
	}
	return int(h.IOBufferDuration.Seconds()*h.SampleRate + 0.5)
}
