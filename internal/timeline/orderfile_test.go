package timeline

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pders01/feedcache/internal/entity"
)

func sampleRecords() []entity.CachedPostRecord {
	return []entity.CachedPostRecord{
		{ID: "s1", Display: entity.DisplayInfo{Author: "alice", Excerpt: "first post"}},
		{ID: "s2", Display: entity.DisplayInfo{Author: "bob", Excerpt: "second", HasMore: true}},
		{ID: "s3", Display: entity.DisplayInfo{Author: "carol", Excerpt: "third"}},
	}
}

func appendRecord(t *testing.T, buf *bytes.Buffer, tag byte, payload []byte) {
	t.Helper()
	var tmp [binary.MaxVarintLen64]byte
	buf.WriteByte(tag)
	n := binary.PutUvarint(tmp[:], uint64(len(payload)))
	buf.Write(tmp[:n])
	buf.Write(payload)
}

func TestOrderRoundTrip(t *testing.T) {
	records := sampleRecords()

	data, err := encodeOrder(records)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := decodeOrder(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !reflect.DeepEqual(records, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, records)
	}
}

func TestOrderRoundTripEmpty(t *testing.T) {
	data, err := encodeOrder(nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeOrder(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected no records, got %d", len(decoded))
	}
}

func TestDecodeDropsGapRecords(t *testing.T) {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], 3)
	buf.Write(tmp[:n])

	post1, _ := json.Marshal(entity.CachedPostRecord{ID: "s1"})
	gap, _ := json.Marshal(map[string]string{"before": "s1", "after": "s2"})
	post2, _ := json.Marshal(entity.CachedPostRecord{ID: "s2"})

	appendRecord(t, &buf, recordTagPost, post1)
	appendRecord(t, &buf, recordTagGap, gap)
	appendRecord(t, &buf, recordTagPost, post2)

	decoded, err := decodeOrder(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records after dropping the gap, got %d", len(decoded))
	}
	if decoded[0].ID != "s1" || decoded[1].ID != "s2" {
		t.Errorf("unexpected ids: %s, %s", decoded[0].ID, decoded[1].ID)
	}
}

func TestDecodeSkipsUnknownTags(t *testing.T) {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], 2)
	buf.Write(tmp[:n])

	appendRecord(t, &buf, 0x7F, []byte("future record format"))
	post, _ := json.Marshal(entity.CachedPostRecord{ID: "s1"})
	appendRecord(t, &buf, recordTagPost, post)

	decoded, err := decodeOrder(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "s1" {
		t.Errorf("expected just s1, got %+v", decoded)
	}
}

func TestDecodeSkipsCorruptRecord(t *testing.T) {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], 2)
	buf.Write(tmp[:n])

	appendRecord(t, &buf, recordTagPost, []byte("{not json"))
	post, _ := json.Marshal(entity.CachedPostRecord{ID: "s2"})
	appendRecord(t, &buf, recordTagPost, post)

	decoded, err := decodeOrder(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "s2" {
		t.Errorf("expected just s2, got %+v", decoded)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data, err := encodeOrder(sampleRecords())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if _, err := decodeOrder(data[:len(data)/2]); err == nil {
		t.Error("expected error for truncated data")
	}
	if _, err := decodeOrder(nil); err == nil {
		t.Error("expected error for empty data")
	}
}
