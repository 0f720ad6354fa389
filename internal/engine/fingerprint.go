package engine

import "hash/fnv"

// fingerprint computes an order-independent hash of an include's
// parameter map, so an include processed twice
// with the same parameters — regardless of the order they were written —
// is recognized as a duplicate.
func fingerprint(params map[string]string) uint64 {
	var acc uint64
	for k, v := range params {
		h := fnv.New64a()
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(v))
		acc ^= h.Sum64()
	}
	return acc
}
