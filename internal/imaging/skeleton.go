package imaging

// Thin reduces every foreground region of m to a one pixel wide, 8-connected
// skeleton using the Zhang-Suen algorithm. Connectivity of each region is
// preserved. The input is not modified.
func Thin(m *Mask) *Mask {
	out := m.Clone()
	w, h := out.Width, out.Height
	if w == 0 || h == 0 {
		return out
	}

	var remove []int
	for {
		changed := false
		for pass := 0; pass < 2; pass++ {
			remove = remove[:0]
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					if out.Pix[y*w+x] == 0 {
						continue
					}
					if thinCandidate(out, x, y, pass) {
						remove = append(remove, y*w+x)
					}
				}
			}
			for _, i := range remove {
				out.Pix[i] = 0
			}
			if len(remove) > 0 {
				changed = true
			}
		}
		if !changed {
			return out
		}
	}
}

// thinCandidate applies the Zhang-Suen deletion test to (x, y). Neighbors are
// numbered clockwise from north: p2 (N), p3 (NE), p4 (E) ... p9 (NW).
func thinCandidate(m *Mask, x, y, pass int) bool {
	var p [8]uint8
	offsets := [8][2]int{
		{0, -1}, {1, -1}, {1, 0}, {1, 1},
		{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	}
	count := 0
	for i, o := range offsets {
		if m.On(x+o[0], y+o[1]) {
			p[i] = 1
			count++
		}
	}
	if count < 2 || count > 6 {
		return false
	}

	transitions := 0
	for i := 0; i < 8; i++ {
		if p[i] == 0 && p[(i+1)%8] == 1 {
			transitions++
		}
	}
	if transitions != 1 {
		return false
	}

	p2, p4, p6, p8 := p[0], p[2], p[4], p[6]
	if pass == 0 {
		return p2*p4*p6 == 0 && p4*p6*p8 == 0
	}
	return p2*p4*p8 == 0 && p2*p6*p8 == 0
}
