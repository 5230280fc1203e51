// Package victron decodes encrypted instant readout advertisements from
// battery monitors, solar chargers and DC-DC converters.
package victron

import (
	"crypto/aes"
	"crypto/cipher"
	"time"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	CompanyID            = 0x02E1
	RecordInstantReadout = 0x10

	// company id (2) + readout tag (1) + model id (2) + record type (1) +
	// nonce (2) + first key byte (1), plus at least two encrypted bytes
	MinAdvertisementLen = 12

	offReadoutTag = 2
	offRecordType = 6
	offNonce0     = 7
	offNonce1     = 8
	offKeyCheck   = 9
	offCipher     = 10

	maxCipherLen = aes.BlockSize

	DefaultStaleAfter = 60 * time.Second
)

// Advertisement is one radio record as delivered by the scanner. Data is
// the manufacturer specific data including the little-endian company id.
type Advertisement struct {
	Address string
	Data    []byte
}

// DecryptFn decrypts in with the given key and counter block.
type DecryptFn func(key [KeyLen]byte, iv [aes.BlockSize]byte, in []byte) ([]byte, error)

// DecryptCTR is AES-128 in counter mode. The output has the length of the
// input.
func DecryptCTR(key [KeyLen]byte, iv [aes.BlockSize]byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "unable to create cipher")
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv[:]).XORKeyStream(out, in)
	return out, nil
}

// Decoder matches advertisements to peers and turns them into reading
// updates. It keeps no state and is safe to call from the scanner
// goroutine.
type Decoder struct {
	peers   map[string]Peer
	decrypt DecryptFn
	now     func() time.Time
}

func NewDecoder(peers []Peer) *Decoder {
	d := &Decoder{
		peers:   make(map[string]Peer, len(peers)),
		decrypt: DecryptCTR,
		now:     time.Now,
	}
	for _, p := range peers {
		if p.Address == "" {
			continue
		}
		d.peers[NormalizeAddress(p.Address)] = p
	}
	return d
}

// Peer returns the peer configured for addr. Matching is exact on the
// lowercase address string.
func (d *Decoder) Peer(addr string) (Peer, bool) {
	p, ok := d.peers[addr]
	return p, ok
}

// Decode returns the update carried by adv. ok is false when the record was
// dropped or carried no available field.
func (d *Decoder) Decode(adv Advertisement) (u telemetry.Update, ok bool) {
	peer, ok := d.Peer(adv.Address)
	if !ok {
		return u, false
	}
	logger := log.WithField("peer", peer.Name)

	data := adv.Data
	if len(data) < MinAdvertisementLen {
		logger.WithField("length", len(data)).Debug("advertisement too short")
		return u, false
	}
	if uint16(data[0])|uint16(data[1])<<8 != CompanyID {
		logger.Debug("unexpected company id")
		return u, false
	}
	if data[offReadoutTag] != RecordInstantReadout {
		logger.WithField("tag", data[offReadoutTag]).Debug("not an instant readout")
		return u, false
	}
	if data[offKeyCheck] != peer.Key[0] {
		logger.Debug("key check byte mismatch")
		return u, false
	}
	layout, ok := LayoutFor(RecordType(data[offRecordType]))
	if !ok {
		logger.WithField("recordType", data[offRecordType]).Debug("unknown record type")
		return u, false
	}

	// work on a copy; the scanner may reuse its buffer
	n := len(data) - offCipher
	if n > maxCipherLen {
		n = maxCipherLen
	}
	enc := make([]byte, n)
	copy(enc, data[offCipher:offCipher+n])

	var iv [aes.BlockSize]byte
	iv[0] = data[offNonce0]
	iv[1] = data[offNonce1]

	plain, err := d.decrypt(peer.Key, iv, enc)
	if err != nil {
		logger.WithField("err", err).Warn("unable to decrypt advertisement")
		return u, false
	}
	if len(plain) < layout.MinLen {
		logger.WithField("length", len(plain)).Debug("record too short for layout")
		return u, false
	}

	u = telemetry.Update{
		Group:  layout.Group,
		Values: make(map[telemetry.Channel]float64, len(layout.Fields)),
		At:     d.now(),
	}
	for _, f := range layout.Fields {
		v := f.Value(plain)
		if !telemetry.IsAvailable(v) {
			continue
		}
		u.Values[f.Channel] = v
	}
	if len(u.Values) == 0 {
		return u, false
	}
	return u, true
}
