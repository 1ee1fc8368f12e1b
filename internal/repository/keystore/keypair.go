package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

const (
	// PrivateKeyExtension is the on-disk extension of private key files.
	PrivateKeyExtension = "privkey"
	// PublicKeyExtension is the on-disk extension of public key files.
	PublicKeyExtension = "pubkey"

	// privatePEMType labels PKCS#8 private key blocks.
	privatePEMType = "PRIVATE KEY"
	// publicPEMType labels PKIX public key blocks.
	publicPEMType = "PUBLIC KEY"
)

// errNotEd25519 is returned when persisted material decodes to a different key type.
var errNotEd25519 = errors.New("not an ed25519 key")

// KeyPair is a named ed25519 signing keypair. The material is read-only
// once obtained and may be shared across workers without synchronization.
type KeyPair struct {
	// Name identifies the key; file names and signature names derive from it.
	Name string
	// Private is the signing key.
	Private ed25519.PrivateKey
	// Public is the verification key distributed with every release.
	Public ed25519.PublicKey
}

// Generate creates a fresh keypair in memory.
func Generate(name string) (*KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}

	return &KeyPair{Name: name, Private: private, Public: public}, nil
}

// EncodePrivatePEM serializes the private key as PKCS#8 PEM.
func (kp *KeyPair) EncodePrivatePEM() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(kp.Private)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: privatePEMType, Bytes: der}), nil
}

// EncodePublicPEM serializes the public key as PKIX PEM.
func (kp *KeyPair) EncodePublicPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.Public)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: publicPEMType, Bytes: der}), nil
}

// ParsePrivatePEM decodes persisted private key material and rederives the
// public half.
func ParsePrivatePEM(name string, data []byte) (*KeyPair, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != privatePEMType {
		return nil, errors.New("no private key block found")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	private, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errNotEd25519
	}

	public, ok := private.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errNotEd25519
	}

	return &KeyPair{Name: name, Private: private, Public: public}, nil
}
