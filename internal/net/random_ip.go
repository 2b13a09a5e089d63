package net

import (
	"crypto/rand"
	"net"
)

// RandV4 returns a random IPv4 string for the X-Forwarded-For header.
// The value only has to vary between requests; collisions don't matter.
func RandV4() string {
	var oct [4]byte
	rand.Read(oct[:])
	return net.IPv4(oct[0], oct[1], oct[2], oct[3]).String()
}
