package crypto

import "encoding/binary"

// MGF1 expands seed into a maskLen-byte mask by concatenating
// Hash(seed || counter) for counter = 0, 1, 2, ... (32-bit big-endian) and
// truncating the result.
func MGF1(h Hash, seed []byte, maskLen int) []byte {
	if maskLen <= 0 {
		return []byte{}
	}

	d := h.New()
	var counter [4]byte
	out := make([]byte, 0, maskLen+h.Size())
	for i := uint32(0); len(out) < maskLen; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		d.Reset()
		d.Write(seed)
		d.Write(counter[:])
		out = d.Sum(out)
	}
	return out[:maskLen]
}

// mgf1XOR XORs out in place with MGF1(seed, len(out)).
func mgf1XOR(out []byte, h Hash, seed []byte) {
	mask := MGF1(h, seed, len(out))
	for i := range out {
		out[i] ^= mask[i]
	}
}
