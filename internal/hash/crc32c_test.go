package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Known answer for the Castagnoli polynomial.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))
}

func TestNewCRC32C(t *testing.T) {
	data := []byte("mop moth pop star stop top")

	h := NewCRC32C()
	h.Write(data[:10])
	h.Write(data[10:])
	assert.Equal(t, CRC32C(data), h.Sum32())
}
