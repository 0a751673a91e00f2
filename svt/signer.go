package svt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/asn1"
	"math/big"

	"github.com/digitorus/svtvalidate/algo"
	"github.com/digitorus/svtvalidate/model"
	"github.com/go-jose/go-jose/v3"
)

// opaqueSigner adapts an injected crypto.Signer - which may be a plain
// in-memory key or one of the hardware/cloud-backed signers (AWS KMS,
// Azure Key Vault, GCP KMS, PKCS#11, CSC) - to go-jose's OpaqueSigner so
// the SVT issuer never needs the private key material itself.
type opaqueSigner struct {
	signer     crypto.Signer
	alg        jose.SignatureAlgorithm
	digestName string
}

func newOpaqueSigner(signer crypto.Signer, alg jose.SignatureAlgorithm, digestName string) (*opaqueSigner, error) {
	if signer == nil {
		return nil, model.New(model.ErrInternalInvariantViolation, "Issue requires a non-nil signer")
	}
	return &opaqueSigner{signer: signer, alg: alg, digestName: digestName}, nil
}

func (o *opaqueSigner) Public() *jose.JSONWebKey {
	return &jose.JSONWebKey{Key: o.signer.Public(), Algorithm: string(o.alg)}
}

func (o *opaqueSigner) Algs() []jose.SignatureAlgorithm {
	return []jose.SignatureAlgorithm{o.alg}
}

func (o *opaqueSigner) SignPayload(payload []byte, alg jose.SignatureAlgorithm) ([]byte, error) {
	if alg == jose.EdDSA {
		// Ed25519 signs the message directly; it must never be pre-hashed.
		return o.signer.Sign(rand.Reader, payload, crypto.Hash(0))
	}

	cryptoHash, err := algo.CryptoHash(o.digestName)
	if err != nil {
		return nil, err
	}
	h := cryptoHash.New()
	h.Write(payload)
	digest := h.Sum(nil)

	var opts crypto.SignerOpts = cryptoHash
	if alg == jose.PS256 || alg == jose.PS384 || alg == jose.PS512 {
		opts = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: cryptoHash}
	}

	sig, err := o.signer.Sign(rand.Reader, digest, opts)
	if err != nil {
		return nil, model.Wrap(model.ErrInternalInvariantViolation, "signer failed to produce SVT signature", err)
	}

	if pub, ok := o.signer.Public().(*ecdsa.PublicKey); ok {
		return ecdsaDERToRaw(sig, pub)
	}
	return sig, nil
}

// ecdsaDERToRaw converts the ASN.1 (r, s) encoding crypto.Signer.Sign
// returns for an ECDSA key into the fixed-width r||s encoding JWS
// requires.
func ecdsaDERToRaw(der []byte, pub *ecdsa.PublicKey) ([]byte, error) {
	var sig struct {
		R, S *big.Int
	}
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return nil, model.Wrap(model.ErrInternalInvariantViolation, "failed to parse ECDSA signature", err)
	}

	size := (pub.Params().BitSize + 7) / 8
	out := make([]byte, 2*size)
	sig.R.FillBytes(out[:size])
	sig.S.FillBytes(out[size:])
	return out, nil
}
