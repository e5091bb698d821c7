package fixture

type savedKind int

const (
	savedUnset savedKind = iota
	savedManual
	savedAuto
)

// savedDimmer remembers which intensity to bring back when color returns from black.
// A manual value always wins over an automatically captured one.
type savedDimmer struct {
	kind  savedKind
	value float64
}

func manualDimmer(v float64) savedDimmer { return savedDimmer{kind: savedManual, value: v} }

func autoDimmer(v float64) savedDimmer { return savedDimmer{kind: savedAuto, value: v} }

// capture records current as the auto-saved level unless a manual level exists
// or current is already dark.
func (s savedDimmer) capture(current float64) savedDimmer {
	if s.kind == savedManual || current <= 0 {
		return s
	}
	return autoDimmer(current)
}

func (s savedDimmer) restore() (float64, bool) {
	if s.kind == savedUnset {
		return 0, false
	}
	return s.value, true
}
