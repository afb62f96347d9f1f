// Package fits implements the small slice of the FITS format the
// pipeline needs to decode Kepler target pixel files: header walking,
// binary table columns, and 32-bit integer image extensions. It is not
// a general FITS library.
package fits

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"lightlab/domain/core"
)

const (
	blockSize = 2880
	cardSize  = 80
)

// Header holds the parsed key/value cards of one HDU.
type Header struct {
	values map[string]string
}

// File is a parsed FITS file: the primary HDU followed by extensions.
type File struct {
	HDUs []HDU
}

// HDU is one header-data unit with its raw data payload.
type HDU struct {
	Header Header
	Data   []byte
}

// Read parses every HDU from r.
func Read(r io.Reader) (*File, error) {
	f := &File{}
	for {
		hdr, err := readHeader(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		data, err := readData(r, hdr)
		if err != nil {
			return nil, err
		}
		f.HDUs = append(f.HDUs, HDU{Header: hdr, Data: data})
	}
	if len(f.HDUs) == 0 {
		return nil, fmt.Errorf("%w: no HDUs", core.ErrBadHeader)
	}
	return f, nil
}

// Extension returns the first extension whose EXTNAME matches name.
func (f *File) Extension(name string) (HDU, bool) {
	for _, hdu := range f.HDUs[1:] {
		if extname, ok := hdu.Header.Str("EXTNAME"); ok && extname == name {
			return hdu, true
		}
	}
	return HDU{}, false
}

func readHeader(r io.Reader) (Header, error) {
	hdr := Header{values: make(map[string]string)}
	block := make([]byte, blockSize)
	first := true
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			if first && (err == io.EOF || err == io.ErrUnexpectedEOF) {
				return Header{}, io.EOF
			}
			return Header{}, fmt.Errorf("%w: truncated header block", core.ErrBadHeader)
		}
		first = false
		for off := 0; off < blockSize; off += cardSize {
			card := string(block[off : off+cardSize])
			key := strings.TrimRight(card[:8], " ")
			if key == "END" {
				return hdr, nil
			}
			if key == "" || key == "COMMENT" || key == "HISTORY" {
				continue
			}
			if len(card) < 10 || card[8] != '=' {
				continue
			}
			hdr.values[key] = parseValue(card[10:])
		}
	}
}

// parseValue strips an inline comment and unquotes string values.
func parseValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "'") {
		if end := strings.Index(raw[1:], "'"); end >= 0 {
			return strings.TrimRight(raw[1:1+end], " ")
		}
		return strings.TrimRight(raw[1:], " ")
	}
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

func readData(r io.Reader, hdr Header) ([]byte, error) {
	size := hdr.dataSize()
	if size == 0 {
		return nil, nil
	}
	padded := (size + blockSize - 1) / blockSize * blockSize
	buf := make([]byte, padded)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: truncated data block", core.ErrBadHeader)
	}
	return buf[:size], nil
}

// dataSize computes the payload byte count from BITPIX and the NAXISn
// cards.
func (h Header) dataSize() int {
	naxis, ok := h.Int("NAXIS")
	if !ok || naxis == 0 {
		return 0
	}
	bitpix, ok := h.Int("BITPIX")
	if !ok {
		return 0
	}
	size := 1
	for i := 1; i <= naxis; i++ {
		n, ok := h.Int(fmt.Sprintf("NAXIS%d", i))
		if !ok {
			return 0
		}
		size *= n
	}
	bytesPer := bitpix / 8
	if bytesPer < 0 {
		bytesPer = -bytesPer
	}
	return size * bytesPer
}

// Str returns a string card value.
func (h Header) Str(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Int returns an integer card value.
func (h Header) Int(key string) (int, bool) {
	v, ok := h.values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float returns a floating point card value.
func (h Header) Float(key string) (float64, bool) {
	v, ok := h.values[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int32Image decodes a BITPIX=32 image HDU into row-major int32
// values plus its width and height.
func (hdu HDU) Int32Image() (width, height int, pixels []int32, err error) {
	bitpix, _ := hdu.Header.Int("BITPIX")
	if bitpix != 32 {
		return 0, 0, nil, fmt.Errorf("%w: image BITPIX %d, want 32", core.ErrBadHeader, bitpix)
	}
	width, _ = hdu.Header.Int("NAXIS1")
	height, _ = hdu.Header.Int("NAXIS2")
	if width <= 0 || height <= 0 || len(hdu.Data) < width*height*4 {
		return 0, 0, nil, fmt.Errorf("%w: image dimensions", core.ErrBadHeader)
	}
	pixels = make([]int32, width*height)
	for i := range pixels {
		pixels[i] = int32(binary.BigEndian.Uint32(hdu.Data[i*4:]))
	}
	return width, height, pixels, nil
}

// column describes one binary table field.
type column struct {
	name   string
	typ    byte
	repeat int
	offset int // byte offset within a row
}

// BinTable provides typed access to a BINTABLE extension.
type BinTable struct {
	rowLen  int
	rows    int
	columns []column
	data    []byte
}

// NewBinTable validates an XTENSION=BINTABLE HDU and indexes its
// columns.
func NewBinTable(hdu HDU) (*BinTable, error) {
	if xt, _ := hdu.Header.Str("XTENSION"); xt != "BINTABLE" {
		return nil, fmt.Errorf("%w: not a binary table", core.ErrBadHeader)
	}
	rowLen, _ := hdu.Header.Int("NAXIS1")
	rows, _ := hdu.Header.Int("NAXIS2")
	fields, _ := hdu.Header.Int("TFIELDS")
	if rowLen <= 0 || rows < 0 || fields <= 0 {
		return nil, fmt.Errorf("%w: table geometry", core.ErrBadHeader)
	}

	bt := &BinTable{rowLen: rowLen, rows: rows, data: hdu.Data}
	offset := 0
	for i := 1; i <= fields; i++ {
		name, ok := hdu.Header.Str(fmt.Sprintf("TTYPE%d", i))
		if !ok {
			return nil, fmt.Errorf("%w: TTYPE%d", core.ErrBadColumn, i)
		}
		form, ok := hdu.Header.Str(fmt.Sprintf("TFORM%d", i))
		if !ok {
			return nil, fmt.Errorf("%w: TFORM%d", core.ErrBadColumn, i)
		}
		repeat, typ, err := parseTForm(form)
		if err != nil {
			return nil, err
		}
		bt.columns = append(bt.columns, column{name: name, typ: typ, repeat: repeat, offset: offset})
		offset += repeat * typeSize(typ)
	}
	if offset != rowLen {
		return nil, fmt.Errorf("%w: row length %d != computed %d", core.ErrBadColumn, rowLen, offset)
	}
	if len(bt.data) < rows*rowLen {
		return nil, fmt.Errorf("%w: table data short", core.ErrBadColumn)
	}
	return bt, nil
}

func parseTForm(form string) (repeat int, typ byte, err error) {
	form = strings.TrimSpace(form)
	if form == "" {
		return 0, 0, fmt.Errorf("%w: empty TFORM", core.ErrBadColumn)
	}
	i := 0
	for i < len(form) && form[i] >= '0' && form[i] <= '9' {
		i++
	}
	repeat = 1
	if i > 0 {
		repeat, err = strconv.Atoi(form[:i])
		if err != nil {
			return 0, 0, fmt.Errorf("%w: TFORM %q", core.ErrBadColumn, form)
		}
	}
	if i >= len(form) {
		return 0, 0, fmt.Errorf("%w: TFORM %q", core.ErrBadColumn, form)
	}
	typ = form[i]
	if typeSize(typ) == 0 {
		return 0, 0, fmt.Errorf("%w: unsupported TFORM type %q", core.ErrBadColumn, string(typ))
	}
	return repeat, typ, nil
}

func typeSize(typ byte) int {
	switch typ {
	case 'B', 'L', 'A':
		return 1
	case 'I':
		return 2
	case 'J', 'E':
		return 4
	case 'K', 'D':
		return 8
	default:
		return 0
	}
}

// Rows returns the row count.
func (bt *BinTable) Rows() int { return bt.rows }

func (bt *BinTable) find(name string) (column, error) {
	for _, c := range bt.columns {
		if c.name == name {
			return c, nil
		}
	}
	return column{}, fmt.Errorf("%w: %s", core.ErrBadColumn, name)
}

// Float64s reads a scalar floating point column (TFORM D or E),
// widening E values.
func (bt *BinTable) Float64s(name string) ([]float64, error) {
	c, err := bt.find(name)
	if err != nil {
		return nil, err
	}
	if c.repeat != 1 || (c.typ != 'D' && c.typ != 'E') {
		return nil, fmt.Errorf("%w: %s is not a scalar float column", core.ErrBadColumn, name)
	}
	out := make([]float64, bt.rows)
	for r := 0; r < bt.rows; r++ {
		base := r*bt.rowLen + c.offset
		if c.typ == 'D' {
			out[r] = math.Float64frombits(binary.BigEndian.Uint64(bt.data[base:]))
		} else {
			out[r] = float64(math.Float32frombits(binary.BigEndian.Uint32(bt.data[base:])))
		}
	}
	return out, nil
}

// Int32s reads a scalar 32-bit integer column (TFORM J).
func (bt *BinTable) Int32s(name string) ([]int32, error) {
	c, err := bt.find(name)
	if err != nil {
		return nil, err
	}
	if c.repeat != 1 || c.typ != 'J' {
		return nil, fmt.Errorf("%w: %s is not a scalar int32 column", core.ErrBadColumn, name)
	}
	out := make([]int32, bt.rows)
	for r := 0; r < bt.rows; r++ {
		base := r*bt.rowLen + c.offset
		out[r] = int32(binary.BigEndian.Uint32(bt.data[base:]))
	}
	return out, nil
}

// Float32Arrays reads a vector float column (TFORM nE), one slice of
// length repeat per row. Kepler pixel stamps are stored this way, one
// image per cadence.
func (bt *BinTable) Float32Arrays(name string) ([][]float32, error) {
	c, err := bt.find(name)
	if err != nil {
		return nil, err
	}
	if c.typ != 'E' {
		return nil, fmt.Errorf("%w: %s is not a float32 array column", core.ErrBadColumn, name)
	}
	out := make([][]float32, bt.rows)
	for r := 0; r < bt.rows; r++ {
		base := r*bt.rowLen + c.offset
		row := make([]float32, c.repeat)
		for k := 0; k < c.repeat; k++ {
			row[k] = math.Float32frombits(binary.BigEndian.Uint32(bt.data[base+k*4:]))
		}
		out[r] = row
	}
	return out, nil
}
