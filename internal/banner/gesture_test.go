package banner

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   Swipe
	}{
		{"left dominant", -60, 10, SwipeNext},
		{"left ratio below 1.5", -60, 40, SwipeNone},
		{"right dominant", 60, -10, SwipePrev},
		{"right ratio below 1.5", 60, 41, SwipeNone},
		{"exactly threshold", -50, 0, SwipeNone},
		{"just past threshold", -51, 0, SwipeNext},
		{"tap", 2, 1, SwipeNone},
		{"vertical scroll", 5, -200, SwipeNone},
		{"long left", -400, 100, SwipeNext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.dx, tt.dy, DefaultMinDistance, DefaultDominance)
			if got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestRecognizerSingleShot(t *testing.T) {
	r := NewRecognizer()
	if got := r.End(0, 0); got != SwipeNone {
		t.Errorf("End without Start = %v, want none", got)
	}

	r.Start(100, 100)
	if !r.Armed() {
		t.Error("Start should arm the recognizer")
	}
	if got := r.End(40, 110); got != SwipeNext {
		t.Errorf("End = %v, want next", got)
	}
	if r.Armed() {
		t.Error("End should disarm the recognizer")
	}
	if got := r.End(-100, 110); got != SwipeNone {
		t.Errorf("second End = %v, want none", got)
	}
}

func TestRecognizerReset(t *testing.T) {
	r := NewRecognizer()
	r.Start(0, 0)
	r.Reset()
	if got := r.End(-100, 0); got != SwipeNone {
		t.Errorf("End after Reset = %v, want none", got)
	}
}

func TestSwipeString(t *testing.T) {
	if SwipeNext.String() != "next" || SwipePrev.String() != "prev" || SwipeNone.String() != "none" {
		t.Error("unexpected Swipe strings")
	}
}
