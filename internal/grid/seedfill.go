package grid

// dilate grows a bitmap by one pixel in all eight directions.
func dilate(src []bool, w, h int) []bool {
	out := make([]bool, len(src))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if !src[j*w+i] {
				continue
			}
			for dj := -1; dj <= 1; dj++ {
				y := j + dj
				if y < 0 || y >= h {
					continue
				}
				for di := -1; di <= 1; di++ {
					x := i + di
					if x < 0 || x >= w {
						continue
					}
					out[y*w+x] = true
				}
			}
		}
	}
	return out
}

// seedFill expands the covered pixels to whole macro-blocks of size block
// pixels. Every block holding a covered pixel becomes fillable; the fill
// starts at covered pixels outside mask and spreads 4-connected through
// fillable pixels, never entering mask.
func seedFill(covered, mask []bool, w, h, block int) []bool {
	bw := (w + block - 1) / block
	bh := (h + block - 1) / block
	active := make([]bool, bw*bh)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if covered[j*w+i] {
				active[(j/block)*bw+i/block] = true
			}
		}
	}
	fillable := func(i, j int) bool {
		return i >= 0 && j >= 0 && i < w && j < h &&
			!mask[j*w+i] && active[(j/block)*bw+i/block]
	}

	filled := make([]bool, w*h)
	var stack []int
	for idx, c := range covered {
		if !c || mask[idx] || filled[idx] {
			continue
		}
		filled[idx] = true
		stack = append(stack[:0], idx)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			i, j := cur%w, cur/w
			for _, n := range [4][2]int{{i + 1, j}, {i - 1, j}, {i, j + 1}, {i, j - 1}} {
				if !fillable(n[0], n[1]) {
					continue
				}
				nidx := n[1]*w + n[0]
				if filled[nidx] {
					continue
				}
				filled[nidx] = true
				stack = append(stack, nidx)
			}
		}
	}
	return filled
}
