package types

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	lcrypto "github.com/leptonlabs/go-lepton/crypto"
	"golang.org/x/crypto/ed25519"
)

const (
	AddressPrefix       = "lepton_"
	AddressSize         = ed25519.PublicKeySize
	addressChecksumSize = 5
	addressPrefixLen    = len(AddressPrefix)
	hexAddressLength    = addressPrefixLen + 2*AddressSize + 2*addressChecksumSize
)

// Address is the public identity of a wallet: the signer's ed25519
// public key itself, not a derived short hash, so that the envelope
// signature can be checked against the address directly.
type Address [AddressSize]byte

func BytesToAddress(b []byte) (Address, error) {
	var a Address
	err := a.SetBytes(b)
	return a, err
}

func HexToAddress(hexStr string) (Address, error) {
	if !IsValidHexAddress(hexStr) {
		return Address{}, fmt.Errorf("not valid hex address %q", hexStr)
	}
	addr, _ := getAddressFromHex(hexStr)
	return addr, nil
}

func IsValidHexAddress(hexStr string) bool {
	if len(hexStr) != hexAddressLength || !strings.HasPrefix(hexStr, AddressPrefix) {
		return false
	}

	address, err := getAddressFromHex(hexStr)
	if err != nil {
		return false
	}

	addressChecksum, err := getAddressChecksumFromHex(hexStr)
	if err != nil {
		return false
	}

	return bytes.Equal(lcrypto.Hash(addressChecksumSize, address[:]), addressChecksum[:])
}

func PubkeyToAddress(pubkey ed25519.PublicKey) Address {
	addr, _ := BytesToAddress(pubkey)
	return addr
}

func (addr *Address) SetBytes(b []byte) error {
	if length := len(b); length != AddressSize {
		return fmt.Errorf("address bytes length error %v", length)
	}
	copy(addr[:], b)
	return nil
}

func (addr Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(addr[:])
}

func (addr Address) Hex() string {
	return AddressPrefix + hex.EncodeToString(addr[:]) + hex.EncodeToString(lcrypto.Hash(addressChecksumSize, addr[:]))
}

func (addr Address) Bytes() []byte { return addr[:] }
func (addr Address) String() string {
	return addr.Hex()
}

func (addr Address) IsZero() bool {
	return addr == Address{}
}

func CreateAddress() (Address, ed25519.PrivateKey, error) {
	pub, pri, err := ed25519.GenerateKey(rand.Reader)
	return PubkeyToAddress(pub), pri, err
}

func getAddressFromHex(hexStr string) ([AddressSize]byte, error) {
	var b [AddressSize]byte
	_, err := hex.Decode(b[:], []byte(hexStr[addressPrefixLen:2*AddressSize+addressPrefixLen]))
	return b, err
}

func getAddressChecksumFromHex(hexStr string) ([addressChecksumSize]byte, error) {
	var b [addressChecksumSize]byte
	_, err := hex.Decode(b[:], []byte(hexStr[2*AddressSize+addressPrefixLen:]))
	return b, err
}

func (addr *Address) UnmarshalJSON(input []byte) error {
	if !isString(input) {
		return ErrJsonNotString
	}
	a, err := HexToAddress(string(trimLeftRightQuotation(input)))
	if err != nil {
		return err
	}
	return addr.SetBytes(a.Bytes())
}

func (addr Address) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}
