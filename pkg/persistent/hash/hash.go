// Package hash contains hash functions suitable for use in hash maps.
package hash

// DJBInit is the initial accumulator of the DJB hash.
const DJBInit uint32 = 5381

// DJBCombine combines a hash value into a DJB accumulator.
func DJBCombine(acc, h uint32) uint32 {
	return mul33(acc) + h
}

// String returns the DJB hash of a string.
func String(s string) uint32 {
	h := DJBInit
	for i := 0; i < len(s); i++ {
		h = DJBCombine(h, uint32(s[i]))
	}
	return h
}

func mul33(u uint32) uint32 {
	return u<<5 + u
}
