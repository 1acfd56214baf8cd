// internal/utils/binary/binary.go
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrShortBuffer возвращается, когда в буфере не хватает байт для чтения поля.
var ErrShortBuffer = errors.New("short buffer")

// Reader последовательно читает little-endian поля из слайса байт.
// Каждое чтение проверяет границы и сдвигает курсор.
type Reader struct {
	data []byte
	pos  int
}

// NewReader создаёт Reader над data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos возвращает текущую позицию курсора.
func (r *Reader) Pos() int { return r.pos }

// Remaining возвращает количество непрочитанных байт.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.pos, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip пропускает n байт.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// Seek переставляет курсор на абсолютную позицию.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("%w: seek to %d of %d", ErrShortBuffer, pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Bytes читает n байт без копирования.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// Uint8 reads a uint8 (byte)
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads a boolean (0 = false, non-zero = true)
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint8()
	return v != 0, err
}

// Uint16 reads a uint16 in little-endian format
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a uint32 in little-endian format
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 reads a uint64 in little-endian format
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// PubKey reads a Solana public key
func (r *Reader) PubKey() (solana.PublicKey, error) {
	b, err := r.take(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(b), nil
}

// OptionalPubKey reads a COption<Pubkey>: u32 tag followed by 32 bytes.
func (r *Reader) OptionalPubKey() (*solana.PublicKey, error) {
	tag, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	key, err := r.PubKey()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	return &key, nil
}
