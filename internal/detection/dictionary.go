package detection

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxDictionarySize = 4 << 20

// Dictionary is a set of square binary marker codes.
//
// Each code is MarkerSize x MarkerSize bits stored row-major, with 1 for a
// white cell. The black border ring around the code is not part of it.
type Dictionary struct {
	// MarkerSize is the number of bits on each side of a code.
	MarkerSize int

	// MaxCorrectionBits is the largest Hamming distance at which a read code
	// is still matched to a dictionary entry.
	MaxCorrectionBits int

	codes [][]uint8
}

// NewDictionary builds a dictionary from codes written as strings of '0' and
// '1', one per marker id.
func NewDictionary(markerSize, maxCorrectionBits int, codes []string) (*Dictionary, error) {
	if markerSize < 2 {
		return nil, fmt.Errorf("marker size must be at least 2, got %d", markerSize)
	}
	if maxCorrectionBits < 0 {
		return nil, fmt.Errorf("max correction bits must not be negative, got %d", maxCorrectionBits)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("dictionary has no markers")
	}

	d := &Dictionary{MarkerSize: markerSize, MaxCorrectionBits: maxCorrectionBits}
	for id, s := range codes {
		bits, err := parseBits(s, markerSize*markerSize)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", id, err)
		}
		d.codes = append(d.codes, bits)
	}
	return d, nil
}

func parseBits(s string, n int) ([]uint8, error) {
	s = strings.TrimSpace(s)
	if len(s) != n {
		return nil, fmt.Errorf("code has %d bits, want %d", len(s), n)
	}
	bits := make([]uint8, n)
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", c, i)
		}
	}
	return bits, nil
}

// ParseDictionary reads a dictionary in the YAML layout OpenCV's
// Dictionary::writeDictionary produces:
//
//	%YAML:1.0
//	---
//	nmarkers: 50
//	markersize: 5
//	maxCorrectionBits: 1
//	marker_0: "1010110..."
//
// The OpenCV-specific "%YAML:1.0" directive is ignored.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var clean bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), maxDictionarySize)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "%") {
			continue
		}
		clean.WriteString(line)
		clean.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(clean.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("dictionary must be a YAML mapping")
	}

	fields := make(map[string]string)
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		fields[root.Content[i].Value] = root.Content[i+1].Value
	}

	intField := func(name string) (int, error) {
		v, ok := fields[name]
		if !ok {
			return 0, fmt.Errorf("dictionary is missing %q", name)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("dictionary field %q: %w", name, err)
		}
		return n, nil
	}

	count, err := intField("nmarkers")
	if err != nil {
		return nil, err
	}
	size, err := intField("markersize")
	if err != nil {
		return nil, err
	}
	maxCorr, err := intField("maxCorrectionBits")
	if err != nil {
		return nil, err
	}

	codes := make([]string, count)
	for id := 0; id < count; id++ {
		s, ok := fields["marker_"+strconv.Itoa(id)]
		if !ok {
			return nil, fmt.Errorf("dictionary is missing marker_%d", id)
		}
		codes[id] = s
	}
	return NewDictionary(size, maxCorr, codes)
}

// LoadDictionary reads a dictionary file written by ParseDictionary's format.
func LoadDictionary(path string) (*Dictionary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dictionary: %w", err)
	}
	if info.Size() > maxDictionarySize {
		return nil, fmt.Errorf("dictionary file too large: %d bytes (max %d)", info.Size(), maxDictionarySize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	d, err := ParseDictionary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Len returns the number of markers in the dictionary.
func (d *Dictionary) Len() int { return len(d.codes) }

// Bits returns a copy of the code for marker id.
func (d *Dictionary) Bits(id int) ([]uint8, error) {
	if id < 0 || id >= len(d.codes) {
		return nil, fmt.Errorf("marker id %d out of range [0, %d)", id, len(d.codes))
	}
	return append([]uint8(nil), d.codes[id]...), nil
}

// Match finds the dictionary code closest to bits over all four rotations.
//
// bits is read row-major with its first cell at the first corner of the
// candidate quad. rotation is the number of quarter turns applied to bits to
// reach the code, which is also the index of the quad corner that holds the
// marker's own top-left corner. ok is false when the best distance exceeds
// maxCorrection.
func (d *Dictionary) Match(bits []uint8, maxCorrection int) (id, rotation, distance int, ok bool) {
	n := d.MarkerSize
	if len(bits) != n*n {
		return -1, 0, 0, false
	}

	id, distance = -1, n*n+1
	cur := append([]uint8(nil), bits...)
	for r := 0; r < 4; r++ {
		for i, code := range d.codes {
			dist := hamming(cur, code)
			if dist < distance {
				id, rotation, distance = i, r, dist
			}
		}
		cur = rotateBits(cur, n)
	}
	return id, rotation, distance, id >= 0 && distance <= maxCorrection
}

func hamming(a, b []uint8) int {
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// rotateBits turns a grid read from corners (p0, p1, p2, p3) into the grid
// read from (p1, p2, p3, p0).
func rotateBits(bits []uint8, n int) []uint8 {
	out := make([]uint8, len(bits))
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out[r*n+c] = bits[c*n+(n-1-r)]
		}
	}
	return out
}
