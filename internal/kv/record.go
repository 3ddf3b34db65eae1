// Package kv implements the page-record codec and the KV engine that
// translates Set/Get/Delete/Scan into Pager and WAL operations.
package kv

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/ironkv/ironkv/internal/ironerr"
	"github.com/ironkv/ironkv/internal/pagestore"
)

const (
	recordMagic   uint32 = 0x49524F4E // "IRON"
	recordVersion uint16 = 1

	// KeyMax is the maximum allowed key length in bytes.
	KeyMax = 256

	offMagic    = 0
	offVersion  = 4
	offChecksum = 6
	offLSN      = 10
	offKeyLen   = 18
	offValueLen = 22
	offPayload  = 26
)

// encodeRecord lays out a page record per SPEC_FULL.md §3: magic, version,
// CRC-32 over bytes[10,P), lsn, key/value lengths, key bytes, value bytes,
// zero padding to pagestore.PageSize.
func encodeRecord(lsn uint64, key, value string) ([]byte, error) {
	total := offPayload + len(key) + len(value)
	if len(key) > KeyMax {
		return nil, ironerr.New("kv.encodeRecord", ironerr.KindKeyTooLarge, nil)
	}
	if total > pagestore.PageSize {
		return nil, ironerr.New("kv.encodeRecord", ironerr.KindValueTooLarge, nil)
	}

	buf := make([]byte, pagestore.PageSize)
	binary.LittleEndian.PutUint32(buf[offMagic:], recordMagic)
	binary.LittleEndian.PutUint16(buf[offVersion:], recordVersion)
	binary.LittleEndian.PutUint64(buf[offLSN:], lsn)
	binary.LittleEndian.PutUint32(buf[offKeyLen:], uint32(len(key)))
	binary.LittleEndian.PutUint32(buf[offValueLen:], uint32(len(value)))
	copy(buf[offPayload:], key)
	copy(buf[offPayload+len(key):], value)

	checksum := crc32.ChecksumIEEE(buf[offLSN:])
	binary.LittleEndian.PutUint32(buf[offChecksum:], checksum)

	return buf, nil
}

// decodedRecord is a successfully validated page record.
type decodedRecord struct {
	LSN   uint64
	Key   string
	Value string
}

// decodeRecord validates magic, version, and checksum, returning an error
// classified as InvalidPageFormat or ChecksumMismatch on failure.
func decodeRecord(buf []byte) (*decodedRecord, error) {
	if len(buf) != pagestore.PageSize {
		return nil, ironerr.New("kv.decodeRecord", ironerr.KindInvalidPageFormat, nil)
	}

	magic := binary.LittleEndian.Uint32(buf[offMagic:])
	if magic != recordMagic {
		return nil, ironerr.New("kv.decodeRecord", ironerr.KindInvalidPageFormat, nil)
	}

	version := binary.LittleEndian.Uint16(buf[offVersion:])
	if version != recordVersion {
		return nil, ironerr.New("kv.decodeRecord", ironerr.KindInvalidPageFormat, nil)
	}

	wantChecksum := binary.LittleEndian.Uint32(buf[offChecksum:])
	gotChecksum := crc32.ChecksumIEEE(buf[offLSN:])
	if wantChecksum != gotChecksum {
		return nil, ironerr.New("kv.decodeRecord", ironerr.KindChecksumMismatch, nil)
	}

	lsn := binary.LittleEndian.Uint64(buf[offLSN:])
	keyLen := binary.LittleEndian.Uint32(buf[offKeyLen:])
	valueLen := binary.LittleEndian.Uint32(buf[offValueLen:])

	if offPayload+int(keyLen)+int(valueLen) > len(buf) {
		return nil, ironerr.New("kv.decodeRecord", ironerr.KindInvalidPageFormat, nil)
	}

	key := string(buf[offPayload : offPayload+int(keyLen)])
	value := string(buf[offPayload+int(keyLen) : offPayload+int(keyLen)+int(valueLen)])

	return &decodedRecord{LSN: lsn, Key: key, Value: value}, nil
}
