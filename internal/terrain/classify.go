package terrain

import "github.com/chewxy/math32"

// Case is a cell geometry pattern.
type Case uint8

// Cell cases in match priority order. CaseNone means no pattern fits the cell.
const (
	CaseNone Case = iota
	CaseFullFloor
	CaseOuterCorner
	CaseEdge
	CaseEdgeOuterCornerA
	CaseEdgeOuterCornerB
	CaseInnerCorner
	CaseEdgeInnerCornerA
	CaseEdgeInnerCornerB
	CaseSaddleRidge
	CaseSaddleValley
	CaseDiagonalSlope
	CaseSlopeCliff
	CaseThreeSidedSlope
	CaseSaddleSplit
	CaseStaircase
	CaseSpiral
	CaseSpiralMirror
)

var caseNames = [...]string{
	CaseNone:             "None",
	CaseFullFloor:        "FullFloor",
	CaseOuterCorner:      "OuterCorner",
	CaseEdge:             "Edge",
	CaseEdgeOuterCornerA: "EdgeOuterCornerA",
	CaseEdgeOuterCornerB: "EdgeOuterCornerB",
	CaseInnerCorner:      "InnerCorner",
	CaseEdgeInnerCornerA: "EdgeInnerCornerA",
	CaseEdgeInnerCornerB: "EdgeInnerCornerB",
	CaseSaddleRidge:      "SaddleRidge",
	CaseSaddleValley:     "SaddleValley",
	CaseDiagonalSlope:    "DiagonalSlope",
	CaseSlopeCliff:       "SlopeCliff",
	CaseThreeSidedSlope:  "ThreeSidedSlope",
	CaseSaddleSplit:      "SaddleSplit",
	CaseStaircase:        "Staircase",
	CaseSpiral:           "Spiral",
	CaseSpiralMirror:     "SpiralMirror",
}

func (c Case) String() string {
	if int(c) < len(caseNames) {
		return caseNames[c]
	}
	return "Unknown"
}

// Corners holds the four corner heights of a cell: A at the cell origin, B at x+1,
// C at z+1 and D at x+1,z+1.
type Corners struct {
	A, B, C, D float32
}

// cycle returns the corners in walking order around the cell.
func (c Corners) cycle() [4]float32 {
	return [4]float32{c.A, c.B, c.D, c.C}
}

// Classification is the matched case and the number of quarter turns applied to
// the cell to match it.
type Classification struct {
	Case     Case
	Rotation int
}

// frame is one rotated view of a cell. Corner a plays the primary corner; b, d, c
// follow it around the cell. Edge flags are true when the edge is merged.
type frame struct {
	a, b, d, c     float32
	ab, bd, cd, ac bool
	threshold      float32
}

func newFrame(cycle [4]float32, rotation int, threshold float32) frame {
	f := frame{
		a:         cycle[rotation%4],
		b:         cycle[(rotation+1)%4],
		d:         cycle[(rotation+2)%4],
		c:         cycle[(rotation+3)%4],
		threshold: threshold,
	}
	f.ab = f.merged(f.a, f.b)
	f.bd = f.merged(f.b, f.d)
	f.cd = f.merged(f.c, f.d)
	f.ac = f.merged(f.a, f.c)
	return f
}

func (f *frame) higher(p, q float32) bool { return p-q > f.threshold }
func (f *frame) lower(p, q float32) bool  { return p-q < -f.threshold }
func (f *frame) merged(p, q float32) bool { return math32.Abs(p-q) < f.threshold }

func (f *frame) allMerged() bool {
	return f.ab && f.bd && f.cd && f.ac
}

// cliffs returns the number of edges that are not merged.
func (f *frame) cliffs() int {
	n := 0
	for _, m := range [4]bool{f.ab, f.bd, f.cd, f.ac} {
		if !m {
			n++
		}
	}
	return n
}

type casePredicate struct {
	kind  Case
	match func(f *frame) bool
}

// caseTable is tried in order at every rotation. Several predicates overlap, so
// the order decides the resulting geometry and must not change.
var caseTable = []casePredicate{
	{CaseOuterCorner, func(f *frame) bool {
		return f.higher(f.a, f.b) && f.higher(f.a, f.c) && f.bd && f.cd
	}},
	{CaseEdge, func(f *frame) bool {
		return f.higher(f.a, f.c) && f.higher(f.b, f.d) && f.ab && f.cd
	}},
	{CaseEdgeOuterCornerA, func(f *frame) bool {
		return f.higher(f.a, f.b) && f.higher(f.a, f.c) && f.higher(f.b, f.d) && f.cd
	}},
	{CaseEdgeOuterCornerB, func(f *frame) bool {
		return f.higher(f.b, f.a) && f.higher(f.a, f.c) && f.higher(f.b, f.d) && f.cd
	}},
	{CaseInnerCorner, func(f *frame) bool {
		return f.lower(f.a, f.b) && f.lower(f.a, f.c) && f.bd && f.cd
	}},
	{CaseEdgeInnerCornerA, func(f *frame) bool {
		return f.lower(f.a, f.b) && f.lower(f.a, f.c) && f.lower(f.b, f.d) && f.cd
	}},
	{CaseEdgeInnerCornerB, func(f *frame) bool {
		return f.lower(f.b, f.a) && f.lower(f.a, f.c) && f.lower(f.b, f.d) && f.cd
	}},
	{CaseSaddleRidge, func(f *frame) bool {
		return f.higher(f.b, f.a) && f.higher(f.b, f.d) && f.higher(f.c, f.a) && f.higher(f.c, f.d) &&
			f.merged(f.b, f.c)
	}},
	{CaseSaddleValley, func(f *frame) bool {
		// When both diagonals merge the higher pair bridges, which SaddleRidge
		// picks up one rotation later.
		return f.lower(f.b, f.a) && f.lower(f.b, f.d) && f.lower(f.c, f.a) && f.lower(f.c, f.d) &&
			f.merged(f.b, f.c) && !f.merged(f.a, f.d)
	}},
	{CaseDiagonalSlope, func(f *frame) bool {
		return f.higher(f.a, f.b) && f.higher(f.a, f.c) && f.higher(f.b, f.d) && f.higher(f.c, f.d) &&
			f.merged(f.b, f.c)
	}},
	{CaseSlopeCliff, func(f *frame) bool {
		return !f.ab && f.bd && f.cd && f.ac
	}},
	{CaseThreeSidedSlope, func(f *frame) bool {
		return !f.ab && !f.bd && !f.ac && f.cd
	}},
	{CaseSaddleSplit, func(f *frame) bool {
		return f.higher(f.b, f.a) && f.higher(f.b, f.d) && f.higher(f.c, f.a) && f.higher(f.c, f.d) &&
			!f.merged(f.a, f.d)
	}},
	{CaseStaircase, func(f *frame) bool {
		return f.higher(f.a, f.b) && f.higher(f.a, f.c) && f.higher(f.b, f.d) && f.higher(f.c, f.d)
	}},
	{CaseSpiral, func(f *frame) bool {
		return f.higher(f.a, f.b) && f.higher(f.a, f.c) && f.higher(f.c, f.d) && f.higher(f.d, f.b)
	}},
	{CaseSpiralMirror, func(f *frame) bool {
		return f.higher(f.a, f.b) && f.higher(f.b, f.d) && f.higher(f.d, f.c) && f.higher(f.a, f.c)
	}},
}

// Classify picks the geometry case of a cell. Fully merged cells short-circuit to
// CaseFullFloor; otherwise the case table is tried at rotations 0..3 and the first
// match wins. The second result is false when nothing matches, which happens for
// height differences sitting exactly on the threshold.
func Classify(h Corners, threshold float32) (Classification, bool) {
	cycle := h.cycle()
	f := newFrame(cycle, 0, threshold)
	if f.allMerged() {
		return Classification{Case: CaseFullFloor}, true
	}
	for r := 0; r < 4; r++ {
		if r > 0 {
			f = newFrame(cycle, r, threshold)
		}
		for i := range caseTable {
			if caseTable[i].match(&f) {
				return Classification{Case: caseTable[i].kind, Rotation: r}, true
			}
		}
	}
	return Classification{Case: CaseNone}, false
}
