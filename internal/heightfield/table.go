package heightfield

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
)

// Height table format errors.
var (
	ErrInvalidTableMagic       = errors.New("invalid height table magic: expected 'MTHT'")
	ErrUnsupportedTableVersion = errors.New("unsupported height table version")
	ErrTruncatedTable          = errors.New("truncated height table data")
	ErrInvalidTableSize        = errors.New("invalid height table size")
	ErrInvalidTableHeight      = errors.New("non-finite height in table")
)

const (
	tableMagic        = "MTHT"
	tableVersionMajor = 1
	tableVersionMinor = 0
	maxTableSide      = 1 << 14
)

// Source is anything that yields a height for a world position.
type Source interface {
	Height(x, z float32) float32
}

// Table is a regular grid of heights, Spacing world units apart, with sample
// (0, 0) at the world origin. It is the on-disk exchange format for heightmaps.
//
// Layout (little endian):
//
//	magic   [4]byte "MTHT"
//	version [2]byte minor, major
//	width   uint32
//	depth   uint32
//	spacing float32
//	heights [width*depth]float32, row-major by z
type Table struct {
	Width   int
	Depth   int
	Spacing float32
	Heights []float32
}

// Bake samples src on a width x depth grid.
func Bake(src Source, width, depth int, spacing float32) *Table {
	t := &Table{
		Width:   width,
		Depth:   depth,
		Spacing: spacing,
		Heights: make([]float32, width*depth),
	}
	for z := 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			t.Heights[x+z*width] = src.Height(float32(x)*spacing, float32(z)*spacing)
		}
	}
	return t
}

// At returns sample (x, z), clamped to the table edges.
func (t *Table) At(x, z int) float32 {
	x = clamp(x, 0, t.Width-1)
	z = clamp(z, 0, t.Depth-1)
	return t.Heights[x+z*t.Width]
}

// Height implements terrain.HeightSource with bilinear interpolation. Positions
// past the edges repeat the border samples.
func (t *Table) Height(x, z float32) float32 {
	fx := x / t.Spacing
	fz := z / t.Spacing
	x0 := int(math32.Floor(fx))
	z0 := int(math32.Floor(fz))
	tx := fx - float32(x0)
	tz := fz - float32(z0)

	near := t.At(x0, z0)*(1-tx) + t.At(x0+1, z0)*tx
	far := t.At(x0, z0+1)*(1-tx) + t.At(x0+1, z0+1)*tx
	return near*(1-tz) + far*tz
}

// MarshalBinary encodes the table.
func (t *Table) MarshalBinary() ([]byte, error) {
	if err := validateTableSize(t.Width, t.Depth); err != nil {
		return nil, err
	}
	if len(t.Heights) != t.Width*t.Depth {
		return nil, fmt.Errorf("%w: %d heights for %dx%d", ErrInvalidTableSize, len(t.Heights), t.Width, t.Depth)
	}
	if err := checkHeights(t.Heights); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(tableMagic)
	buf.Write([]byte{tableVersionMinor, tableVersionMajor})
	binary.Write(&buf, binary.LittleEndian, uint32(t.Width))
	binary.Write(&buf, binary.LittleEndian, uint32(t.Depth))
	binary.Write(&buf, binary.LittleEndian, t.Spacing)
	binary.Write(&buf, binary.LittleEndian, t.Heights)
	return buf.Bytes(), nil
}

// ParseTable decodes a height table.
func ParseTable(data []byte) (*Table, error) {
	if len(data) < 18 {
		return nil, ErrTruncatedTable
	}
	if string(data[0:4]) != tableMagic {
		return nil, ErrInvalidTableMagic
	}

	// Version is stored as [minor, major]
	if major := data[5]; major != tableVersionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedTableVersion, major, data[4])
	}

	r := bytes.NewReader(data[6:])
	var width, depth uint32
	var spacing float32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("%w: reading width", ErrTruncatedTable)
	}
	if err := binary.Read(r, binary.LittleEndian, &depth); err != nil {
		return nil, fmt.Errorf("%w: reading depth", ErrTruncatedTable)
	}
	if err := binary.Read(r, binary.LittleEndian, &spacing); err != nil {
		return nil, fmt.Errorf("%w: reading spacing", ErrTruncatedTable)
	}
	if err := validateTableSize(int(width), int(depth)); err != nil {
		return nil, err
	}
	if !(spacing > 0) {
		return nil, fmt.Errorf("%w: spacing %v", ErrInvalidTableSize, spacing)
	}

	t := &Table{
		Width:   int(width),
		Depth:   int(depth),
		Spacing: spacing,
		Heights: make([]float32, int(width)*int(depth)),
	}
	if err := binary.Read(r, binary.LittleEndian, t.Heights); err != nil {
		return nil, fmt.Errorf("%w: reading heights", ErrTruncatedTable)
	}
	if err := checkHeights(t.Heights); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadTableFile loads a height table from disk.
func ReadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading height table: %w", err)
	}
	return ParseTable(data)
}

// WriteTableFile saves a height table to disk.
func WriteTableFile(path string, t *Table) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func validateTableSize(width, depth int) error {
	if width < 1 || depth < 1 || width > maxTableSide || depth > maxTableSide {
		return fmt.Errorf("%w: %dx%d", ErrInvalidTableSize, width, depth)
	}
	return nil
}

func checkHeights(heights []float32) error {
	for i, h := range heights {
		if math32.IsNaN(h) || math32.IsInf(h, 0) {
			return fmt.Errorf("%w: sample %d is %v", ErrInvalidTableHeight, i, h)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
