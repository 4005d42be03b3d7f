package sorter

// NameHash is the seedless 31-multiplier polynomial hash over the code points
// of name, wrapped to a signed 32-bit integer:
//
//	h = 0; for each code point c: h = 31*h + c
//
// The function is fixed so the Unspecified order is identical in every
// process and on every platform. For names made of BMP characters it matches
// the classic JVM string hash.
func NameHash(name string) int32 {
	var h int32
	for _, r := range name {
		h = 31*h + int32(r)
	}
	return h
}
