package database

const (
	DBKP_WALLET = byte(iota + 1)
)

// EncodeKey joins a key-space prefix with fixed-length partitions.
// All partitions in this schema are fixed width, so plain
// concatenation stays unambiguous and prefix scans stay cheap.
func EncodeKey(prefix byte, partitionList ...[]byte) []byte {
	keyLen := 1
	for _, partition := range partitionList {
		keyLen += len(partition)
	}

	key := make([]byte, 0, keyLen)
	key = append(key, prefix)
	for _, partition := range partitionList {
		key = append(key, partition...)
	}
	return key
}
