package crypto

import (
	crand "crypto/rand"
	"fmt"

	"golang.org/x/crypto/ed25519"
)

// GenerateKey makes a fresh ed25519 key pair. Key storage and derivation
// live outside this package.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(crand.Reader)
}

func Sign(priv ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv, message)
}

func VerifySig(pub ed25519.PublicKey, message, signature []byte) (bool, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return false, fmt.Errorf("error public key size %v", l)
	}
	if l := len(signature); l != ed25519.SignatureSize {
		return false, fmt.Errorf("error signature size %v", l)
	}
	return ed25519.Verify(pub, message, signature), nil
}
