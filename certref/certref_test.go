package certref

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"

	"github.com/digitorus/svtvalidate/model"
)

func selfSignedCert(t *testing.T, cn string, serial int64) *x509.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: cn},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	return cert
}

func TestEncode_NilSigner(t *testing.T) {
	_, err := Encode(nil, nil, nil, sha256.New)
	if err == nil {
		t.Fatal("expected an error for a nil signer certificate")
	}
}

func TestEncode_ShortChain_UsesChainHashOverSignerOnly(t *testing.T) {
	signer := selfSignedCert(t, "signer", 1)
	ref, err := Encode(signer, []*x509.Certificate{signer}, nil, sha256.New)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if ref.Type != model.CertRefChainHash {
		t.Fatalf("Type = %v, want CertRefChainHash", ref.Type)
	}
	if len(ref.Ref) != 1 {
		t.Fatalf("expected a single hash entry for a chain shorter than 2, got %d", len(ref.Ref))
	}
}

func TestEncode_LongChain_UsesChainHashWithConcatenation(t *testing.T) {
	signer := selfSignedCert(t, "signer", 1)
	intermediate := selfSignedCert(t, "intermediate", 2)
	chain := []*x509.Certificate{signer, intermediate}

	ref, err := Encode(signer, chain, nil, sha256.New)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if ref.Type != model.CertRefChainHash {
		t.Fatalf("Type = %v, want CertRefChainHash", ref.Type)
	}
	if len(ref.Ref) != 2 {
		t.Fatalf("expected two hash entries (signer + chain concatenation), got %d", len(ref.Ref))
	}
}

func TestEncode_ValidatedPathDivergesFromChain_UsesFullChain(t *testing.T) {
	signer := selfSignedCert(t, "signer", 1)
	embeddedIntermediate := selfSignedCert(t, "embedded-intermediate", 2)
	validatedIntermediate := selfSignedCert(t, "validated-intermediate", 3)

	chain := []*x509.Certificate{signer, embeddedIntermediate}
	validatedPath := []*x509.Certificate{signer, validatedIntermediate}

	ref, err := Encode(signer, chain, validatedPath, sha256.New)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if ref.Type != model.CertRefChain {
		t.Fatalf("Type = %v, want CertRefChain when the validated path is not a subset of the embedded chain", ref.Type)
	}
	if len(ref.Ref) != len(validatedPath) {
		t.Fatalf("expected one base64 entry per certificate in the validated path, got %d", len(ref.Ref))
	}
}

func TestEncode_ValidatedPathSubsetOfChain_FallsBackToChainHash(t *testing.T) {
	signer := selfSignedCert(t, "signer", 1)
	intermediate := selfSignedCert(t, "intermediate", 2)
	chain := []*x509.Certificate{signer, intermediate}

	// The validated path is wholly contained in the embedded chain, so
	// it should not trigger the full-chain encoding.
	ref, err := Encode(signer, chain, []*x509.Certificate{signer}, sha256.New)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if ref.Type != model.CertRefChainHash {
		t.Fatalf("Type = %v, want CertRefChainHash when the validated path is a subset of the embedded chain", ref.Type)
	}
}
