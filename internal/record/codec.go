// Package record implements the on-disk framing for local storage log
// entries (spec.md §4.2 / §6): little-endian, no padding, no checksum.
//
//	u8   operation_tag     (1=Insert, 2=Delete)
//	u64  timestamp_secs
//	u32  id_len
//	u8[] id_utf8
//	u32  payload_len       (0 for Delete)
//	u8[] payload_json_utf8 (present iff Insert)
package record

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/clippyhq/clippy/internal/clipboard"
)

// Tag identifies the kind of record.
type Tag uint8

const (
	TagInsert Tag = 1
	TagDelete Tag = 2
)

// ErrCorrupt is returned by Decode when a record is truncated or otherwise
// malformed mid-stream. Recovery treats it as "stop here", not a fatal error.
var ErrCorrupt = errors.New("record: corrupt or truncated record")

// Record is one decoded log entry. Payload is nil unless Tag is TagInsert.
type Record struct {
	Tag       Tag
	Timestamp int64
	ItemID    string
	Payload   *clipboard.Item
}

// Encode writes rec to w in the framed binary format. It never partially
// writes past a hard error — callers should treat any error as "nothing
// durable happened" and rely on the caller's own flush for durability.
func Encode(w io.Writer, rec Record) error {
	if rec.Tag != TagInsert && rec.Tag != TagDelete {
		return fmt.Errorf("record: invalid tag %d", rec.Tag)
	}

	idBytes := []byte(rec.ItemID)

	var payloadBytes []byte

	if rec.Tag == TagInsert {
		if rec.Payload == nil {
			return fmt.Errorf("record: insert record for %q has nil payload", rec.ItemID)
		}

		var err error

		payloadBytes, err = json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("record: marshal payload for %q: %w", rec.ItemID, err)
		}
	}

	buf := make([]byte, 0, 1+8+4+len(idBytes)+4+len(payloadBytes))
	buf = append(buf, byte(rec.Tag))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(rec.Timestamp))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(idBytes)))
	buf = append(buf, idBytes...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payloadBytes)))
	buf = append(buf, payloadBytes...)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("record: write: %w", err)
	}

	return nil
}

// Decode reads one Record from r.
//
// Returns io.EOF (unwrapped, checkable with errors.Is) only when the stream
// ends cleanly between records. Any other truncation — a partial header or
// a payload shorter than its declared length — returns ErrCorrupt, which
// recovery treats as "stop, discard this trailing fragment".
func Decode(r io.Reader) (Record, error) {
	var header [13]byte

	n, err := io.ReadFull(r, header[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return Record{}, io.EOF
		}

		return Record{}, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}

	tag := Tag(header[0])
	if tag != TagInsert && tag != TagDelete {
		return Record{}, fmt.Errorf("%w: unknown tag %d", ErrCorrupt, tag)
	}

	timestamp := int64(binary.LittleEndian.Uint64(header[1:9]))
	idLen := binary.LittleEndian.Uint32(header[9:13])

	idBytes := make([]byte, idLen)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return Record{}, fmt.Errorf("%w: id: %v", ErrCorrupt, err)
	}

	var payloadLenBytes [4]byte
	if _, err := io.ReadFull(r, payloadLenBytes[:]); err != nil {
		return Record{}, fmt.Errorf("%w: payload_len: %v", ErrCorrupt, err)
	}

	payloadLen := binary.LittleEndian.Uint32(payloadLenBytes[:])

	payloadBytes := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payloadBytes); err != nil {
		return Record{}, fmt.Errorf("%w: payload: %v", ErrCorrupt, err)
	}

	rec := Record{
		Tag:       tag,
		Timestamp: timestamp,
		ItemID:    string(idBytes),
	}

	if tag == TagInsert {
		var item clipboard.Item
		if err := json.Unmarshal(payloadBytes, &item); err != nil {
			return Record{}, fmt.Errorf("%w: payload json: %v", ErrCorrupt, err)
		}

		rec.Payload = &item
	} else if payloadLen != 0 {
		return Record{}, fmt.Errorf("%w: delete record for %q has non-empty payload", ErrCorrupt, rec.ItemID)
	}

	return rec, nil
}

// NewReader wraps r with buffering sized for typical clipboard-log record
// runs, mirroring how the teacher buffers its migration/file scans.
func NewReader(r io.Reader) *bufio.Reader {
	return bufio.NewReaderSize(r, 64*1024)
}
