// Package signature converts ECDSA signatures between the ASN.1 DER form
// returned by key-management backends and the raw r||s form consumed by the ledger.
package signature

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ErrMalformedSignature is returned for any DER input or (r, s) pair that cannot be converted.
var ErrMalformedSignature = errors.New("malformed signature")

// ECDSASignature holds the two big-endian integers of an ECDSA signature exactly as
// they appear in the DER INTEGER contents, including a sign-guard 0x00 if present.
type ECDSASignature struct {
	R []byte
	S []byte
}

// Decode parses a DER SEQUENCE of exactly two INTEGERs. Trailing bytes are rejected.
func Decode(der []byte) (*ECDSASignature, error) {
	input := cryptobyte.String(der)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) {
		return nil, errors.Wrap(ErrMalformedSignature, "expected DER SEQUENCE")
	}
	if !input.Empty() {
		return nil, errors.Wrapf(ErrMalformedSignature, "%d trailing bytes after SEQUENCE", len(input))
	}

	r, err := readInteger(&seq, "r")
	if err != nil {
		return nil, err
	}
	s, err := readInteger(&seq, "s")
	if err != nil {
		return nil, err
	}
	if !seq.Empty() {
		return nil, errors.Wrap(ErrMalformedSignature, "SEQUENCE has more than two elements")
	}

	return &ECDSASignature{R: r, S: s}, nil
}

func readInteger(seq *cryptobyte.String, name string) ([]byte, error) {
	if seq.Empty() {
		return nil, errors.Wrapf(ErrMalformedSignature, "SEQUENCE is missing %s", name)
	}
	if !seq.PeekASN1Tag(asn1.INTEGER) {
		return nil, errors.Wrapf(ErrMalformedSignature, "%s is not an INTEGER", name)
	}

	var v cryptobyte.String
	if !seq.ReadASN1(&v, asn1.INTEGER) {
		return nil, errors.Wrapf(ErrMalformedSignature, "failed to read %s", name)
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Encode builds a DER SEQUENCE of two INTEGERs from R and S as stored.
// No sign-guard byte is added; callers pad beforehand when required.
func (sig *ECDSASignature) Encode() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.INTEGER, func(b *cryptobyte.Builder) {
			b.AddBytes(sig.R)
		})
		b.AddASN1(asn1.INTEGER, func(b *cryptobyte.Builder) {
			b.AddBytes(sig.S)
		})
	})

	der, err := b.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build DER signature")
	}
	return der, nil
}

// ToRaw strips at most one leading zero byte from R and from S independently
// and returns R||S.
func (sig *ECDSASignature) ToRaw() ([]byte, error) {
	r := stripSignGuard(sig.R)
	s := stripSignGuard(sig.S)
	if len(r) == 0 || len(s) == 0 {
		return nil, errors.Wrap(ErrMalformedSignature, "empty r or s")
	}

	raw := make([]byte, 0, len(r)+len(s))
	raw = append(raw, r...)
	raw = append(raw, s...)
	return raw, nil
}

func stripSignGuard(v []byte) []byte {
	if len(v) > 0 && v[0] == 0x00 {
		return v[1:]
	}
	return v
}

// DERToRaw decodes der and converts it to the raw r||s form.
func DERToRaw(der []byte) ([]byte, error) {
	sig, err := Decode(der)
	if err != nil {
		return nil, err
	}
	return sig.ToRaw()
}
