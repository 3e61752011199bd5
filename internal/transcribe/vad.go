package transcribe

import "math"

const (
	vadFrameMs    = 30
	vadThreshold  = 0.01
	vadHangoverMs = 300
)

// gateSilence drops frames whose RMS energy stays below the threshold,
// keeping a short hangover after speech so trailing consonants survive.
// It returns nil when no frame contains speech.
func gateSilence(samples []float32, sampleRate int) []float32 {
	if sampleRate <= 0 || len(samples) == 0 {
		return nil
	}
	frameLen := sampleRate * vadFrameMs / 1000
	if frameLen == 0 {
		frameLen = 1
	}
	hangoverFrames := vadHangoverMs / vadFrameMs

	var out []float32
	hang := 0
	for start := 0; start < len(samples); start += frameLen {
		end := min(start+frameLen, len(samples))
		frame := samples[start:end]
		if rms(frame) >= vadThreshold {
			hang = hangoverFrames
		} else if hang > 0 {
			hang--
		} else {
			continue
		}
		out = append(out, frame...)
	}
	return out
}

func rms(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
