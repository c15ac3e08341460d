package datamodel

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/chacha20"
)

// deterministic PRNG: a chacha20 keystream keyed by the seed.  The same seed
// always produces the same scenario.
var key [32]byte
var nonce [12]byte
var stream *chacha20.Cipher

func Seed(seed int64) {
	key = [32]byte{}
	nonce = [12]byte{}
	binary.LittleEndian.PutUint64(key[0:], uint64(seed))

	var err error
	stream, err = chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(err)
	}
}

func next(buf []byte) {
	if stream == nil {
		Seed(0)
	}
	for i := range buf {
		buf[i] = 0
	}
	stream.XORKeyStream(buf, buf)
}

// uniform in [0,1)
func Float64() float64 {
	var buf [8]byte
	next(buf[:])
	// 53 bits of mantissa
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) / (1 << 53)
}

func Int() int64 {
	var buf [8]byte
	next(buf[:])
	uint64Value := binary.LittleEndian.Uint64(buf[:])
	return int64(uint64Value & (1<<63 - 1))
}

func Intn(m int64) int64 {

	if m <= 0 { //a case when no randomness is needed
		return 0
	}
	return Int() % m
}

// exponentially distributed value with the given mean
func Exp(mean float64) float64 {
	return -mean * math.Log(1-Float64())
}

func Perm(n int) []int {
	// Create a slice of integers from 0 to n-1
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}

	// Fisher-Yates using the chacha20 stream
	for i := n - 1; i > 0; i-- {
		j := Intn(int64(i + 1))
		indexes[i], indexes[j] = indexes[j], indexes[i]
	}

	return indexes
}
