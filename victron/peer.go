package victron

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const KeyLen = 16

// Peer is a radio device whose readings are decrypted.
type Peer struct {
	Name    string
	Address string
	Key     [KeyLen]byte
}

// Default peer names. Addresses and keys come from configuration.
const (
	NameBatteryMonitor = "BMV-712"
	NameSolarCharger   = "MPPT100/30"
	NameDCDC           = "OrionXS"
)

// NormalizeAddress lowercases a colon separated MAC address.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ValidAddress reports whether addr is six colon separated hex octets.
func ValidAddress(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 6 {
		return false
	}
	for _, p := range parts {
		if len(p) != 2 {
			return false
		}
		if _, err := hex.DecodeString(p); err != nil {
			return false
		}
	}
	return true
}

// ParseKey decodes a 128 bit key written as 32 hex digits.
func ParseKey(s string) ([KeyLen]byte, error) {
	var key [KeyLen]byte
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return key, errors.Wrap(err, "invalid key")
	}
	if len(b) != KeyLen {
		return key, errors.Errorf("key must be %d bytes, got %d", KeyLen, len(b))
	}
	copy(key[:], b)
	return key, nil
}

// NewPeer builds a peer from its configured address and hex key.
func NewPeer(name, addr, key string) (Peer, error) {
	p := Peer{
		Name:    name,
		Address: NormalizeAddress(addr),
	}
	if !ValidAddress(p.Address) {
		return p, errors.Errorf("%s: invalid address %q", name, addr)
	}
	k, err := ParseKey(key)
	if err != nil {
		return p, errors.Wrapf(err, "%s", name)
	}
	p.Key = k
	return p, nil
}
