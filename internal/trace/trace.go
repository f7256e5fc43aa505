package trace

// Point is a pixel coordinate in a rectified frame.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Stroke is an ordered run of 8-connected pixels.
type Stroke []Point

// Bitmap is a binary raster. Reads outside the bitmap must report false.
type Bitmap interface {
	Size() (width, height int)
	On(x, y int) bool
}

// neighborOffsets lists the 8-neighborhood as (dx, dy). Neighbors are pushed
// in this order, so the last one is explored first.
var neighborOffsets = [8]Point{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Components splits the foreground of b into 8-connected components.
//
// Seeds are found in raster order (row by row, left to right). Each component
// is grown with an explicit stack: a popped pixel that was already visited is
// skipped, otherwise it is appended and its unvisited foreground neighbors are
// pushed. Every foreground pixel appears in exactly one component, and the
// pixel order within a component is the visitation order.
func Components(b Bitmap) []Stroke {
	w, h := b.Size()
	if w <= 0 || h <= 0 {
		return nil
	}

	visited := make([]bool, w*h)
	var out []Stroke
	var stack []Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || !b.On(x, y) {
				continue
			}

			var stroke Stroke
			stack = append(stack[:0], Point{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if visited[p.Y*w+p.X] {
					continue
				}
				visited[p.Y*w+p.X] = true
				stroke = append(stroke, p)

				for _, o := range neighborOffsets {
					nx, ny := p.X+o.X, p.Y+o.Y
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if !visited[ny*w+nx] && b.On(nx, ny) {
						stack = append(stack, Point{nx, ny})
					}
				}
			}
			out = append(out, stroke)
		}
	}
	return out
}

// Trace returns the components of b that have more than minLength pixels.
// Shorter components are treated as noise and dropped.
func Trace(b Bitmap, minLength int) []Stroke {
	var out []Stroke
	for _, s := range Components(b) {
		if len(s) > minLength {
			out = append(out, s)
		}
	}
	return out
}

// PixelCount returns the total number of pixels across strokes.
func PixelCount(strokes []Stroke) int {
	n := 0
	for _, s := range strokes {
		n += len(s)
	}
	return n
}
