package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// QVC format errors.
var (
	ErrInvalidQVCMagic       = errors.New("invalid QVC magic: expected 'QVC1'")
	ErrUnsupportedQVCVersion = errors.New("unsupported QVC version")
	ErrTruncatedQVCData      = errors.New("truncated QVC data")
	ErrInvalidQVCBins        = errors.New("invalid QVC bin count")
	ErrQVCCodeOutOfRange     = errors.New("QVC code outside bin range")
)

// qvcMagic identifies a quantized vertex container.
const qvcMagic = "QVC1"

// QVCVersion is the container version this package reads and writes.
const QVCVersion uint8 = 1

// qvcHeaderSize is magic (4) + version (1) + bins (4) + count (4).
const qvcHeaderSize = 13

// QVC is a quantized vertex container: the bin count an encoder used plus
// one 3-component uint16 code triple per vertex. Together with a params
// record it is all a decoder needs to reconstruct a mesh.
//
// Layout, little-endian:
//
//	offset 0  magic "QVC1"
//	offset 4  version uint8
//	offset 5  bins    uint32
//	offset 9  count   uint32
//	offset 13 codes   count * 3 * uint16
type QVC struct {
	Bins  int
	Codes [][3]uint16
}

// ParseQVC parses a quantized vertex container from raw bytes.
func ParseQVC(data []byte) (*QVC, error) {
	if len(data) < qvcHeaderSize {
		return nil, ErrTruncatedQVCData
	}
	if string(data[0:4]) != qvcMagic {
		return nil, ErrInvalidQVCMagic
	}
	if data[4] != QVCVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedQVCVersion, data[4])
	}

	bins := binary.LittleEndian.Uint32(data[5:9])
	count := binary.LittleEndian.Uint32(data[9:13])
	if bins < 2 || bins > 65536 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQVCBins, bins)
	}

	need := qvcHeaderSize + int(count)*6
	if len(data) < need {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrTruncatedQVCData, need, len(data))
	}

	qvc := &QVC{
		Bins:  int(bins),
		Codes: make([][3]uint16, count),
	}
	r := bytes.NewReader(data[qvcHeaderSize:need])
	if err := binary.Read(r, binary.LittleEndian, qvc.Codes); err != nil {
		return nil, fmt.Errorf("%w: reading codes", ErrTruncatedQVCData)
	}

	for i, c := range qvc.Codes {
		for a := 0; a < 3; a++ {
			if int(c[a]) >= qvc.Bins {
				return nil, fmt.Errorf("%w: vertex %d axis %d has code %d with %d bins",
					ErrQVCCodeOutOfRange, i, a, c[a], qvc.Bins)
			}
		}
	}
	return qvc, nil
}

// ParseQVCFile parses a quantized vertex container from disk.
func ParseQVCFile(path string) (*QVC, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading QVC file: %w", err)
	}
	return ParseQVC(data)
}

// Encode renders q in container form, validating the bin count and the
// code-range invariant first.
func (q *QVC) Encode() ([]byte, error) {
	if q.Bins < 2 || q.Bins > 65536 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQVCBins, q.Bins)
	}
	for i, c := range q.Codes {
		for a := 0; a < 3; a++ {
			if int(c[a]) >= q.Bins {
				return nil, fmt.Errorf("%w: vertex %d axis %d has code %d with %d bins",
					ErrQVCCodeOutOfRange, i, a, c[a], q.Bins)
			}
		}
	}

	buf := new(bytes.Buffer)
	buf.Grow(qvcHeaderSize + len(q.Codes)*6)
	buf.WriteString(qvcMagic)
	buf.WriteByte(QVCVersion)
	binary.Write(buf, binary.LittleEndian, uint32(q.Bins))
	binary.Write(buf, binary.LittleEndian, uint32(len(q.Codes)))
	binary.Write(buf, binary.LittleEndian, q.Codes)
	return buf.Bytes(), nil
}

// WriteFile writes q to disk in container form.
func (q *QVC) WriteFile(path string) error {
	data, err := q.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing QVC file: %w", err)
	}
	return nil
}
