package banner

import "math"

// Swipe is the outcome of one touch sequence.
type Swipe int

const (
	SwipeNone Swipe = iota
	SwipeNext
	SwipePrev
)

func (s Swipe) String() string {
	switch s {
	case SwipeNext:
		return "next"
	case SwipePrev:
		return "prev"
	}
	return "none"
}

// Default recognizer thresholds, in pixels.
const (
	DefaultMinDistance = 50
	DefaultDominance   = 1.5
)

// Recognizer turns a start/end coordinate pair into a horizontal swipe.
// It is single-shot: End consumes the recorded start.
type Recognizer struct {
	MinDistance float64
	Dominance   float64

	startX, startY float64
	armed          bool
}

// NewRecognizer returns a recognizer with the default thresholds.
func NewRecognizer() *Recognizer {
	return &Recognizer{MinDistance: DefaultMinDistance, Dominance: DefaultDominance}
}

// Start records the touch-start point and arms the recognizer.
func (r *Recognizer) Start(x, y float64) {
	r.startX, r.startY = x, y
	r.armed = true
}

// Armed reports whether a touch sequence is in progress.
func (r *Recognizer) Armed() bool { return r.armed }

// Reset drops any recorded start point.
func (r *Recognizer) Reset() { r.armed = false }

// End classifies the gesture ending at (x, y). A leftward swipe advances to
// the next panel, a rightward one goes back. Short or mostly-vertical motion
// is a tap or scroll and yields SwipeNone.
func (r *Recognizer) End(x, y float64) Swipe {
	if !r.armed {
		return SwipeNone
	}
	r.armed = false
	return Classify(x-r.startX, y-r.startY, r.MinDistance, r.Dominance)
}

// Classify applies the swipe thresholds to a displacement.
func Classify(dx, dy, minDistance, dominance float64) Swipe {
	if math.Abs(dx) <= minDistance || math.Abs(dx) <= math.Abs(dy)*dominance {
		return SwipeNone
	}
	if dx < 0 {
		return SwipeNext
	}
	return SwipePrev
}
