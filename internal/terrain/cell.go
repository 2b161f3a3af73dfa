package terrain

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/marching-terrain/pkg/math"
)

// CellGeometry is the cached triangle list of one cell in chunk-local space.
// Every three consecutive vertices form a triangle.
type CellGeometry struct {
	Case     Case
	Rotation int
	Vertices []math.Vec3
	UVs      []math.Vec2
	Colors   []math.Color
}

// TriangleCount returns the number of triangles in the cell.
func (g *CellGeometry) TriangleCount() int {
	return len(g.Vertices) / 3
}

func (g *CellGeometry) reset(cls Classification) {
	g.Case = cls.Case
	g.Rotation = cls.Rotation
	g.Vertices = g.Vertices[:0]
	g.UVs = g.UVs[:0]
	g.Colors = g.Colors[:0]
}

// Paint channels at or above this weight win over the other diagonal of a saddle.
const dominantPaint = 0.99

// Corner and edge midpoint positions of the unit cell, walking A, B, D, C.
var (
	unitCorners = [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	unitMids    = [4]math.Vec2{{X: 0.5, Y: 0}, {X: 1, Y: 0.5}, {X: 0.5, Y: 1}, {X: 0, Y: 0.5}}
	unitCenter  = math.Vec2{X: 0.5, Y: 0.5}
)

// point is a vertex in the rotated unit cell. at.X is x and at.Y is z.
type point struct {
	at   math.Vec2
	y    float32
	diag bool
}

func pt(at math.Vec2, y float32) point {
	return point{at: at, y: y}
}

// cellBuilder emits the geometry of one cell. All corner data is held in the
// rotated frame so every case is written once for the primary corner.
type cellBuilder struct {
	f        frame
	colors   [4]math.Color // A, B, D, C in the rotated frame
	rotation int
	origin   math.Vec2
	size     math.Vec2
	out      *CellGeometry
}

func newCellBuilder(h Corners, colors [4]math.Color, cls Classification, x, z int, s *Settings, out *CellGeometry) *cellBuilder {
	cycle := [4]math.Color{colors[0], colors[1], colors[3], colors[2]}
	r := cls.Rotation
	b := &cellBuilder{
		f:        newFrame(h.cycle(), r, s.MergeThreshold),
		rotation: r,
		origin:   math.Vec2{X: float32(x) * s.CellSize.X, Y: float32(z) * s.CellSize.Y},
		size:     s.CellSize,
		out:      out,
	}
	for i := range b.colors {
		b.colors[i] = cycle[(i+r)%4]
	}
	out.reset(cls)
	return b
}

// emitCell classifies and builds cell (x, z) into out. It returns false when the
// cell matched no case and was left empty.
func emitCell(h Corners, colors [4]math.Color, x, z int, s *Settings, out *CellGeometry) bool {
	cls, ok := Classify(h, s.MergeThreshold)
	b := newCellBuilder(h, colors, cls, x, z, s, out)
	if !ok {
		return false
	}

	switch cls.Case {
	case CaseFullFloor:
		b.fullFloor(s.HighFidelityFloor)
	case CaseOuterCorner, CaseInnerCorner:
		b.cornerCut()
	case CaseEdge:
		b.edge()
	case CaseSaddleRidge, CaseSaddleValley, CaseDiagonalSlope:
		b.diagonalBand()
	default:
		b.quadrants()
	}
	return true
}

// unrotate maps a rotated-frame position back into the cell frame.
func (b *cellBuilder) unrotate(p math.Vec2) math.Vec2 {
	for i := 0; i < b.rotation; i++ {
		p = math.Vec2{X: 1 - p.Y, Y: p.X}
	}
	return p
}

func (b *cellBuilder) color(p point) math.Color {
	c := b.colors
	if !p.diag {
		return math.Bilinear(c[0], c[1], c[3], c[2], p.at.X, p.at.Y)
	}
	return diagonalColor(c[0], c[1], c[3], c[2], p.at.X, p.at.Y)
}

// diagonalColor blends the paint at a point of a saddle band. Each diagonal is
// interpolated on its own and the weaker weight wins per channel, unless either
// diagonal carries a fully painted channel.
func diagonalColor(ca, cb, cc, cd math.Color, x, z float32) math.Color {
	ad := ca.Lerp(cd, (x+z)/2).Channels()
	bc := cb.Lerp(cc, (1-x+z)/2).Channels()
	var out [4]float32
	for i := range out {
		if ad[i] > dominantPaint || bc[i] > dominantPaint {
			out[i] = 1
		} else {
			out[i] = math32.Min(ad[i], bc[i])
		}
	}
	return math.ColorFromChannels(out)
}

func (b *cellBuilder) position(p point) (math.Vec3, math.Vec2) {
	u := b.unrotate(p.at)
	return math.Vec3{
		X: b.origin.X + u.X*b.size.X,
		Y: p.y,
		Z: b.origin.Y + u.Y*b.size.Y,
	}, u
}

// floor emits an up-facing triangle.
func (b *cellBuilder) floor(p0, p1, p2 point) {
	e1 := p1.at.Sub(p0.at)
	e2 := p2.at.Sub(p0.at)
	// Y component of the normal on the unit square (x, z) plane.
	if e1.Y*e2.X-e1.X*e2.Y < 0 {
		p1, p2 = p2, p1
	}
	for _, p := range [3]point{p0, p1, p2} {
		pos, uv := b.position(p)
		b.out.Vertices = append(b.out.Vertices, pos)
		b.out.UVs = append(b.out.UVs, uv)
		b.out.Colors = append(b.out.Colors, b.color(p))
	}
}

// fan emits floor triangles over a convex polygon.
func (b *cellBuilder) fan(pts ...point) {
	for i := 1; i+1 < len(pts); i++ {
		b.floor(pts[0], pts[i], pts[i+1])
	}
}

// wall emits the vertical quad along e0-e1 that joins two floors. aHeights are the
// floor heights at e0 and e1 on the side containing aSide, bHeights on the other.
// The quad faces the lower floor; triangles with no height collapse are dropped.
func (b *cellBuilder) wall(e0, e1 math.Vec2, aHeights, bHeights [2]float32, aSide math.Vec2) {
	top, bottom := aHeights, bHeights
	mid := e0.Lerp(e1, 0.5)
	facing := mid.Sub(aSide)
	if aHeights[0]+aHeights[1] < bHeights[0]+bHeights[1] {
		top, bottom = bHeights, aHeights
		facing = aSide.Sub(mid)
	}

	t0 := pt(e0, top[0])
	t1 := pt(e1, top[1])
	b0 := pt(e0, bottom[0])
	b1 := pt(e1, bottom[1])
	b.wallTriangle(t0, t1, b0, e0, facing)
	b.wallTriangle(t1, b1, b0, e0, facing)
}

func (b *cellBuilder) wallTriangle(p0, p1, p2 point, start, facing math.Vec2) {
	q0 := math.Vec3{X: p0.at.X, Y: p0.y, Z: p0.at.Y}
	q1 := math.Vec3{X: p1.at.X, Y: p1.y, Z: p1.at.Y}
	q2 := math.Vec3{X: p2.at.X, Y: p2.y, Z: p2.at.Y}
	n := q1.Sub(q0).Cross(q2.Sub(q0))
	if n.Length() < 1e-6 {
		return
	}
	if n.X*facing.X+n.Z*facing.Y < 0 {
		p1, p2 = p2, p1
	}
	for _, p := range [3]point{p0, p1, p2} {
		pos, _ := b.position(p)
		// Stretch V with height so tall cliffs keep their texel density.
		uv := math.Vec2{X: p.at.Distance(start) * b.size.X, Y: p.y / b.size.X}
		b.out.Vertices = append(b.out.Vertices, pos)
		b.out.UVs = append(b.out.UVs, uv)
		b.out.Colors = append(b.out.Colors, b.color(point{at: p.at}))
	}
}

func (b *cellBuilder) fullFloor(highFidelity bool) {
	f := &b.f
	a, bb, d, c := pt(unitCorners[0], f.a), pt(unitCorners[1], f.b), pt(unitCorners[2], f.d), pt(unitCorners[3], f.c)
	if !highFidelity {
		b.floor(a, bb, d)
		b.floor(a, d, c)
		return
	}
	o := pt(unitCenter, (f.a+f.b+f.c+f.d)/4)
	b.floor(a, bb, o)
	b.floor(bb, d, o)
	b.floor(d, c, o)
	b.floor(c, a, o)
}

// cornerCut raises or sinks the primary corner: a corner triangle, a diagonal
// wall, and a fan over the rest of the cell.
func (b *cellBuilder) cornerCut() {
	f := &b.f
	mab, mac := unitMids[0], unitMids[3]
	b.floor(pt(unitCorners[0], f.a), pt(mab, f.a), pt(mac, f.a))
	b.wall(mab, mac, [2]float32{f.a, f.a}, [2]float32{f.b, f.c}, unitCorners[0])
	b.fan(pt(mab, f.b), pt(unitCorners[1], f.b), pt(unitCorners[2], f.d), pt(unitCorners[3], f.c), pt(mac, f.c))
}

// edge builds a straight cliff between the AB side and the CD side.
func (b *cellBuilder) edge() {
	f := &b.f
	mbd, mac := unitMids[1], unitMids[3]
	b.fan(pt(unitCorners[0], f.a), pt(unitCorners[1], f.b), pt(mbd, f.b), pt(mac, f.a))
	b.wall(mac, mbd, [2]float32{f.a, f.b}, [2]float32{f.c, f.d}, unitMids[0])
	b.fan(pt(mac, f.c), pt(mbd, f.d), pt(unitCorners[2], f.d), pt(unitCorners[3], f.c))
}

// diagonalBand bridges the B-C diagonal with a floor band and cuts A and D off
// as isolated corners.
func (b *cellBuilder) diagonalBand() {
	f := &b.f
	mab, mbd, mcd, mac := unitMids[0], unitMids[1], unitMids[2], unitMids[3]

	b.floor(pt(unitCorners[0], f.a), pt(mab, f.a), pt(mac, f.a))
	b.floor(pt(unitCorners[2], f.d), pt(mcd, f.d), pt(mbd, f.d))
	b.wall(mab, mac, [2]float32{f.a, f.a}, [2]float32{f.b, f.c}, unitCorners[0])
	b.wall(mbd, mcd, [2]float32{f.d, f.d}, [2]float32{f.b, f.c}, unitCorners[2])

	band := func(at math.Vec2, y float32) point {
		return point{at: at, y: y, diag: true}
	}
	b.floor(band(mab, f.b), pt(unitCorners[1], f.b), band(mbd, f.b))
	b.floor(band(mcd, f.c), pt(unitCorners[3], f.c), band(mac, f.c))
	b.floor(band(mab, f.b), band(mbd, f.b), band(mcd, f.c))
	b.floor(band(mab, f.b), band(mcd, f.c), band(mac, f.c))
}

// quadrants gives each corner the quarter of the cell next to it. Corners joined
// by merged edges share a slope; the others are split by walls meeting at the
// cell center.
func (b *cellBuilder) quadrants() {
	f := &b.f
	h := [4]float32{f.a, f.b, f.d, f.c}
	merged := [4]bool{f.ab, f.bd, f.cd, f.ac}

	// Average height of each corner's merged run around the cell.
	// Members are summed in index order so corners of one run get identical centers.
	var center [4]float32
	for i := range h {
		var run [4]bool
		run[i] = true
		for j := i; merged[j] && !run[(j+1)%4]; j = (j + 1) % 4 {
			run[(j+1)%4] = true
		}
		for j := (i + 3) % 4; merged[j] && !run[j]; j = (j + 3) % 4 {
			run[j] = true
		}
		var sum float32
		n := 0
		for j, in := range run {
			if in {
				sum += h[j]
				n++
			}
		}
		center[i] = sum / float32(n)
	}

	midHeight := func(edge, corner int) float32 {
		if merged[edge] {
			return (h[edge] + h[(edge+1)%4]) / 2
		}
		return h[corner]
	}

	for i := range h {
		prev := (i + 3) % 4
		b.fan(
			pt(unitCorners[i], h[i]),
			pt(unitMids[i], midHeight(i, i)),
			pt(unitCenter, center[i]),
			pt(unitMids[prev], midHeight(prev, i)),
		)
	}
	for i := range h {
		if merged[i] {
			continue
		}
		next := (i + 1) % 4
		b.wall(unitMids[i], unitCenter,
			[2]float32{h[i], center[i]},
			[2]float32{h[next], center[next]},
			unitCorners[i])
	}
}
