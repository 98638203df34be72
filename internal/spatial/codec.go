package spatial

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"

	"star-router/internal/starmap"
)

// Binary index layout:
//
//	Header (16 bytes)
//	  [0:4]   magic "SRSI"
//	  [4]     format version
//	  [5]     flags: bit0 has_temperature, bit1 has_metadata
//	  [6:10]  node count, uint32 LE
//	  [10]    coordinate precision in bits
//	  [11:16] reserved
//	Metadata (only when bit1 set; version >= 2)
//	  [0:32]  dataset SHA-256 checksum
//	  [32:34] release tag length, uint16 LE, followed by the tag bytes
//	  [..+8]  build timestamp, unix seconds, int64 LE
//	Body: zstd-compressed point records (25 bytes each)
//	Trailer: SHA-256 over the compressed body
var (
	ErrInvalidFormat      = errors.New("spatial index: not a valid index artifact")
	ErrCorruptIndex       = errors.New("spatial index: checksum mismatch, artifact is corrupt")
	ErrUnsupportedVersion = errors.New("spatial index: format version newer than supported")
)

const (
	formatVersion  = 2
	legacyVersion  = 1
	headerSize     = 16
	recordSize     = 8 + 12 + 4 + 1 // id + coords + temp + temp flag
	coordPrecision = 32

	flagHasTemperature = 1 << 0
	flagHasMetadata    = 1 << 1
)

var indexMagic = [4]byte{'S', 'R', 'S', 'I'}

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Encode serializes the index into its binary artifact form. Metadata is
// written when the index carries it; decoders of the previous format version
// read the same artifact minus the metadata block.
func Encode(idx *Index) ([]byte, error) {
	hasTemp := false
	body := make([]byte, 0, len(idx.points)*recordSize)
	var rec [recordSize]byte
	for _, p := range idx.points {
		binary.LittleEndian.PutUint64(rec[0:8], uint64(p.ID))
		binary.LittleEndian.PutUint32(rec[8:12], math.Float32bits(p.Coords[0]))
		binary.LittleEndian.PutUint32(rec[12:16], math.Float32bits(p.Coords[1]))
		binary.LittleEndian.PutUint32(rec[16:20], math.Float32bits(p.Coords[2]))
		binary.LittleEndian.PutUint32(rec[20:24], math.Float32bits(p.Temp))
		rec[24] = 0
		if p.HasTemp {
			rec[24] = 1
			hasTemp = true
		}
		body = append(body, rec[:]...)
	}
	compressed := zstdEncoder.EncodeAll(body, nil)

	var buf bytes.Buffer
	header := make([]byte, headerSize)
	copy(header[0:4], indexMagic[:])
	header[4] = formatVersion
	if hasTemp {
		header[5] |= flagHasTemperature
	}
	if idx.meta != nil {
		header[5] |= flagHasMetadata
	}
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(idx.points)))
	header[10] = coordPrecision
	buf.Write(header)

	if idx.meta != nil {
		buf.Write(idx.meta.DatasetChecksum[:])
		tag := []byte(idx.meta.ReleaseTag)
		if len(tag) > math.MaxUint16 {
			return nil, fmt.Errorf("spatial index: release tag too long (%d bytes)", len(tag))
		}
		var tagLen [2]byte
		binary.LittleEndian.PutUint16(tagLen[:], uint16(len(tag)))
		buf.Write(tagLen[:])
		buf.Write(tag)
		var ts [8]byte
		binary.LittleEndian.PutUint64(ts[:], uint64(idx.meta.BuiltAt.Unix()))
		buf.Write(ts[:])
	}

	buf.Write(compressed)
	sum := sha256.Sum256(compressed)
	buf.Write(sum[:])
	return buf.Bytes(), nil
}

// Decode reconstructs an index from its binary artifact form. The previous
// format version (no metadata block) decodes to an index with nil metadata;
// versions newer than the current one are rejected.
func Decode(data []byte) (*Index, error) {
	if len(data) < headerSize || !bytes.Equal(data[0:4], indexMagic[:]) {
		return nil, ErrInvalidFormat
	}
	version := data[4]
	if version > formatVersion {
		return nil, fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, version)
	}
	flags := data[5]
	count := binary.LittleEndian.Uint32(data[6:10])

	rest := data[headerSize:]
	var meta *Metadata
	if flags&flagHasMetadata != 0 {
		if version < formatVersion {
			return nil, fmt.Errorf("%w: metadata flag set in version %d", ErrInvalidFormat, version)
		}
		var err error
		meta, rest, err = decodeMetadata(rest)
		if err != nil {
			return nil, err
		}
	}

	if len(rest) < sha256.Size {
		return nil, ErrInvalidFormat
	}
	compressed := rest[:len(rest)-sha256.Size]
	var stored [32]byte
	copy(stored[:], rest[len(rest)-sha256.Size:])
	if sha256.Sum256(compressed) != stored {
		return nil, ErrCorruptIndex
	}

	body, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if len(body) != int(count)*recordSize {
		return nil, fmt.Errorf("%w: body holds %d bytes, header declares %d records",
			ErrInvalidFormat, len(body), count)
	}

	points := make([]Point, count)
	for i := range points {
		rec := body[i*recordSize : (i+1)*recordSize]
		points[i] = Point{
			ID: starmap.SystemID(binary.LittleEndian.Uint64(rec[0:8])),
			Coords: [3]float32{
				math.Float32frombits(binary.LittleEndian.Uint32(rec[8:12])),
				math.Float32frombits(binary.LittleEndian.Uint32(rec[12:16])),
				math.Float32frombits(binary.LittleEndian.Uint32(rec[16:20])),
			},
			Temp:    math.Float32frombits(binary.LittleEndian.Uint32(rec[20:24])),
			HasTemp: rec[24] != 0,
		}
	}
	return BuildWithMetadata(points, meta), nil
}

func decodeMetadata(data []byte) (*Metadata, []byte, error) {
	if len(data) < sha256.Size+2 {
		return nil, nil, ErrInvalidFormat
	}
	meta := &Metadata{}
	copy(meta.DatasetChecksum[:], data[:sha256.Size])
	data = data[sha256.Size:]

	tagLen := int(binary.LittleEndian.Uint16(data[:2]))
	data = data[2:]
	if len(data) < tagLen+8 {
		return nil, nil, ErrInvalidFormat
	}
	meta.ReleaseTag = string(data[:tagLen])
	data = data[tagLen:]

	meta.BuiltAt = time.Unix(int64(binary.LittleEndian.Uint64(data[:8])), 0).UTC()
	return meta, data[8:], nil
}
