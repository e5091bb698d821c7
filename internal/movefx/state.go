package movefx

import "math"

// State is the operator-tuned movement setup that survives restarts.
type State struct {
	CenterPan  float64 `json:"center_pan"`
	CenterTilt float64 `json:"center_tilt"`
	Size       float64 `json:"fx_size"`
	BPM        int     `json:"bpm"`
	Phase      float64 `json:"move_phase"`
	Speed      float64 `json:"move_speed_multiplier"`
}

const (
	DefaultBPM = 120
	MinBPM     = 1
	MaxBPM     = 480
	MaxSpeed   = 2
	// minSpeed stands in for a zero multiplier.
	minSpeed = 0.01
)

// DefaultState is centered, half size, 120 BPM, no spread, normal speed.
func DefaultState() State {
	return State{CenterPan: 0.5, CenterTilt: 0.5, Size: 0.5, BPM: DefaultBPM, Phase: 0, Speed: 1}
}

// normalize clamps every field into its range.
func (s State) normalize() State {
	s.CenterPan = clamp01(s.CenterPan)
	s.CenterTilt = clamp01(s.CenterTilt)
	s.Size = clamp01(s.Size)
	s.BPM = clampBPM(s.BPM)
	s.Phase = clamp01(s.Phase)
	if s.Speed < 0 || math.IsNaN(s.Speed) {
		s.Speed = 0
	}
	if s.Speed > MaxSpeed {
		s.Speed = MaxSpeed
	}
	return s
}

func clampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

func (s State) geometry() geometry {
	return geometry{centerPan: s.CenterPan, centerTilt: s.CenterTilt, radius: s.Size * 0.5}
}
