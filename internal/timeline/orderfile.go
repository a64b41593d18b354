package timeline

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pders01/feedcache/internal/entity"
)

// Order file wire format: uvarint record count, then per record a tag byte,
// a uvarint payload length, and the JSON payload. Readers skip unknown tags
// by length, which keeps old readers working against newer files.
const (
	recordTagPost byte = 0x01
	// recordTagGap marked "results missing between two known ids". The
	// current design never writes it and drops it on read; the tag stays
	// reserved so old files remain decodable.
	recordTagGap byte = 0x02
)

func encodeOrder(records []entity.CachedPostRecord) ([]byte, error) {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(tmp[:], uint64(len(records)))
	buf.Write(tmp[:n])

	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding order record %s: %w", rec.ID, err)
		}
		buf.WriteByte(recordTagPost)
		n = binary.PutUvarint(tmp[:], uint64(len(payload)))
		buf.Write(tmp[:n])
		buf.Write(payload)
	}

	return buf.Bytes(), nil
}

func decodeOrder(data []byte) ([]entity.CachedPostRecord, error) {
	r := bytes.NewReader(data)

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("reading record count: %w", err)
	}

	var records []entity.CachedPostRecord
	for i := uint64(0); i < count; i++ {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading record tag: %w", err)
		}
		size, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("reading record length: %w", err)
		}
		if size > uint64(r.Len()) {
			return nil, fmt.Errorf("truncated record %d", i)
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("reading record payload: %w", err)
		}

		switch tag {
		case recordTagPost:
			var rec entity.CachedPostRecord
			if err := json.Unmarshal(payload, &rec); err != nil {
				// One corrupt record does not poison the rest.
				continue
			}
			records = append(records, rec)
		case recordTagGap:
			// Reserved but inert: decoded, never produces an item.
		default:
			// Unknown tag from a newer writer; skip by length.
		}
	}

	return records, nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// leaves the previous order file intact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
