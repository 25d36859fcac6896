package interaction

import "math"

const (
	FocusScale   = 1.5
	MinZoomScale = 0.1
	MaxZoomScale = 3.0
)

// Transform is the pan and zoom applied to the canvas.
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the untransformed view.
var Identity = Transform{K: 1}

// FocusOn centers the point (x, y) in a width by height viewport at
// FocusScale.
func FocusOn(x, y, width, height float64) Transform {
	return Transform{
		X: width/2 - x*FocusScale,
		Y: height/2 - y*FocusScale,
		K: FocusScale,
	}
}

// Apply maps a layout point to screen coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Clamped limits the zoom factor to the allowed extent.
func (t Transform) Clamped() Transform {
	if t.K == 0 || math.IsNaN(t.K) {
		t.K = 1
	}
	t.K = math.Max(MinZoomScale, math.Min(MaxZoomScale, t.K))
	return t
}
