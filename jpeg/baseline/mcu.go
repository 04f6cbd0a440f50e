package baseline

import "github.com/cocosip/go-jpeg-baseline/jpeg/common"

// dataUnit is one 8x8 block of coefficients, in zig-zag order while coded
type dataUnit [64]int32

// MCU holds, for each frame component, its H×V data units in raster order
type MCU [][]dataUnit

// frameLayout is the MCU geometry of a frame
type frameLayout struct {
	width, height int
	maxH, maxV    int
	mcuWidth      int // 8·maxH
	mcuHeight     int // 8·maxV
	mcuCols       int
	mcuRows       int
	components    []FrameComponent
}

func newFrameLayout(f *SOF0) frameLayout {
	l := frameLayout{
		width:      int(f.Width),
		height:     int(f.Height),
		maxH:       1,
		maxV:       1,
		components: f.Components,
	}
	for _, c := range f.Components {
		l.maxH = max(l.maxH, c.H)
		l.maxV = max(l.maxV, c.V)
	}
	l.mcuWidth = 8 * l.maxH
	l.mcuHeight = 8 * l.maxV
	l.mcuCols = common.DivCeil(l.width, l.mcuWidth)
	l.mcuRows = common.DivCeil(l.height, l.mcuHeight)
	return l
}

// mcuCount is the number of MCUs covering the frame
func (l frameLayout) mcuCount() int {
	return l.mcuCols * l.mcuRows
}

// newMCU allocates an MCU with zeroed data units for every component
func (l frameLayout) newMCU() MCU {
	m := make(MCU, len(l.components))
	for i, c := range l.components {
		m[i] = make([]dataUnit, c.H*c.V)
	}
	return m
}

// plane is a component's samples on its own (possibly subsampled) grid,
// covering the whole MCU grid.
type plane struct {
	width, height int
	samples       []int32
}

// planeSize returns the dimensions of component ci's sample grid
func (l frameLayout) planeSize(ci int) (int, int) {
	c := l.components[ci]
	return l.mcuCols * c.H * 8, l.mcuRows * c.V * 8
}

// assemblePlane places the spatial-domain data units of component ci
// (natural order, one per data unit of every MCU) onto its sample grid.
func (l frameLayout) assemblePlane(ci int, mcus []MCU) plane {
	c := l.components[ci]
	w, h := l.planeSize(ci)
	p := plane{width: w, height: h, samples: make([]int32, w*h)}

	for m := range mcus {
		mx, my := m%l.mcuCols, m/l.mcuCols
		for j := range mcus[m][ci] {
			du := &mcus[m][ci][j]
			bx := (mx*c.H + j%c.H) * 8
			by := (my*c.V + j/c.H) * 8
			for y := 0; y < 8; y++ {
				copy(p.samples[(by+y)*w+bx:(by+y)*w+bx+8], du[y*8:y*8+8])
			}
		}
	}
	return p
}

// upsample returns the value of component ci at full-resolution pixel (x, y)
// by nearest-neighbour replication.
func (l frameLayout) upsample(ci int, p plane, x, y int) int32 {
	c := l.components[ci]
	sx := x * c.H / l.maxH
	sy := y * c.V / l.maxV
	return p.samples[sy*p.width+sx]
}

// extendEdges pads a full-resolution width×height plane to the MCU grid
// by replicating the last column and row.
func (l frameLayout) extendEdges(src []int32) plane {
	w, h := l.mcuCols*l.mcuWidth, l.mcuRows*l.mcuHeight
	p := plane{width: w, height: h, samples: make([]int32, w*h)}
	for y := 0; y < h; y++ {
		sy := min(y, l.height-1)
		row := src[sy*l.width : sy*l.width+l.width]
		dst := p.samples[y*w : y*w+w]
		copy(dst, row)
		for x := l.width; x < w; x++ {
			dst[x] = row[l.width-1]
		}
	}
	return p
}

// downsample reduces a padded full-resolution plane to component ci's grid
// with a box filter, rounding the average half away from zero.
func (l frameLayout) downsample(ci int, full plane) plane {
	c := l.components[ci]
	fx, fy := l.maxH/c.H, l.maxV/c.V
	if fx == 1 && fy == 1 {
		return full
	}

	w, h := l.planeSize(ci)
	p := plane{width: w, height: h, samples: make([]int32, w*h)}
	n := int32(fx * fy)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum int32
			for dy := 0; dy < fy; dy++ {
				row := full.samples[(y*fy+dy)*full.width:]
				for dx := 0; dx < fx; dx++ {
					sum += row[x*fx+dx]
				}
			}
			if sum < 0 {
				p.samples[y*w+x] = -((-sum*2 + n) / (2 * n))
			} else {
				p.samples[y*w+x] = (sum*2 + n) / (2 * n)
			}
		}
	}
	return p
}

// splitPlane cuts component ci's grid into data units, natural order,
// and stores them into the MCUs.
func (l frameLayout) splitPlane(ci int, p plane, mcus []MCU) {
	c := l.components[ci]
	for m := range mcus {
		mx, my := m%l.mcuCols, m/l.mcuCols
		for j := range mcus[m][ci] {
			du := &mcus[m][ci][j]
			bx := (mx*c.H + j%c.H) * 8
			by := (my*c.V + j/c.H) * 8
			for y := 0; y < 8; y++ {
				copy(du[y*8:y*8+8], p.samples[(by+y)*p.width+bx:])
			}
		}
	}
}
