package segment

// labelComponents assigns 8-connected labels to foreground pixels. Labels are
// numbered from 1 in raster order of each component's first pixel.
func labelComponents(mask []bool, w, h int) []int32 {
	labels := make([]int32, w*h)
	queue := make([]int, 0, 1024)
	var next int32

	for start, fg := range mask {
		if !fg || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		queue = append(queue[:0], start)

		for k := 0; k < len(queue); k++ {
			ci := queue[k]
			cx, cy := ci%w, ci/w
			for dy := -1; dy <= 1; dy++ {
				ny := cy + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := cx + dx
					if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
						continue
					}
					ni := ny*w + nx
					if mask[ni] && labels[ni] == 0 {
						labels[ni] = next
						queue = append(queue, ni)
					}
				}
			}
		}
	}
	return labels
}
