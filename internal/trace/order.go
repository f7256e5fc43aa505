package trace

// OrderPath reorders the pixels of s into a walk a plotter can follow.
//
// The walk starts at an endpoint (a pixel with a single neighbor in s), or at
// s[0] for closed loops, and keeps stepping to an unvisited neighbor,
// preferring edge-adjacent pixels over diagonal ones. When it runs out of
// neighbors at a junction it jumps to the nearest unvisited pixel. The result
// holds exactly the pixels of s.
func OrderPath(s Stroke) Stroke {
	if len(s) < 3 {
		return append(Stroke(nil), s...)
	}

	index := make(map[Point]int, len(s))
	for i, p := range s {
		index[p] = i
	}

	start := 0
	for i, p := range s {
		if countNeighbors(p, index) == 1 {
			start = i
			break
		}
	}

	visited := make([]bool, len(s))
	out := make(Stroke, 0, len(s))
	cur := start
	for {
		visited[cur] = true
		out = append(out, s[cur])
		if len(out) == len(s) {
			return out
		}

		next, ok := nextStep(s[cur], index, visited)
		if !ok {
			next = nearestUnvisited(s[cur], s, visited)
		}
		cur = next
	}
}

// stepOffsets tries edge neighbors before diagonals.
var stepOffsets = [8]Point{
	{1, 0}, {0, 1}, {-1, 0}, {0, -1},
	{1, 1}, {-1, 1}, {-1, -1}, {1, -1},
}

func nextStep(p Point, index map[Point]int, visited []bool) (int, bool) {
	for _, o := range stepOffsets {
		if i, ok := index[Point{p.X + o.X, p.Y + o.Y}]; ok && !visited[i] {
			return i, true
		}
	}
	return 0, false
}

func nearestUnvisited(p Point, s Stroke, visited []bool) int {
	best, bestDist := -1, 0
	for i, q := range s {
		if visited[i] {
			continue
		}
		dx, dy := q.X-p.X, q.Y-p.Y
		d := dx*dx + dy*dy
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func countNeighbors(p Point, index map[Point]int) int {
	n := 0
	for _, o := range neighborOffsets {
		if _, ok := index[Point{p.X + o.X, p.Y + o.Y}]; ok {
			n++
		}
	}
	return n
}
