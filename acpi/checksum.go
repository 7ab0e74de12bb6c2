package acpi

// Checksum returns the byte that makes the sum of every byte in bufs,
// plus the returned byte itself, zero mod 256. Callers pass the table
// bytes with the checksum field still set to zero.
func Checksum(bufs ...[]byte) uint8 {
	var sum uint8

	for _, buf := range bufs {
		for _, b := range buf {
			sum += b
		}
	}

	return -sum
}
