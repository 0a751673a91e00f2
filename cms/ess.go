package cms

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/asn1"

	"github.com/digitorus/svtvalidate/model"
)

var (
	oidSigningCertificate   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 12}
	oidSigningCertificateV2 = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 47}
)

// essCertID is the RFC 2634 ESSCertID: always SHA-1.
type essCertID struct {
	CertHash     []byte
	IssuerSerial asn1.RawValue `asn1:"optional"`
}

type signingCertificate struct {
	Certs []essCertID
}

// essCertIDv2Raw captures the ESSCertIDv2 SEQUENCE without committing to
// whether the optional hashAlgorithm field is present - that
// determination requires peeking at the leading tag of the remaining
// bytes (SEQUENCE = AlgorithmIdentifier present, OCTET STRING = bare
// hash, algorithm defaults to SHA-256) before a second, concrete
// unmarshal.
type essCertIDv2Raw struct {
	Rest asn1.RawContent
}

type signingCertificateV2Raw struct {
	Certs []asn1.RawValue
}

type algorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

type essCertIDv2WithAlg struct {
	HashAlgorithm algorithmIdentifier
	CertHash      []byte
	IssuerSerial  asn1.RawValue `asn1:"optional"`
}

type essCertIDv2NoAlg struct {
	CertHash     []byte
	IssuerSerial asn1.RawValue `asn1:"optional"`
}

// essBinding is the PAdES binding result: the stored hash of the signer
// certificate and the digest algorithm under which it was computed.
type essBinding struct {
	Present  bool
	CertHash []byte
	Digest   string // "SHA1" or "SHA256" (or another name carried in AlgorithmIdentifier)
}

// extractESSBinding reads the ESS signing-certificate attribute (v2
// preferred, v1 fallback) from the signed attributes. Absence is not an
// error: it simply means the signature is not PAdES-bound.
func extractESSBinding(get attrGetter) (essBinding, error) {
	var v2 signingCertificateV2Raw
	if ok, err := get(oidSigningCertificateV2, &v2); err != nil {
		return essBinding{}, model.Wrap(model.ErrCMSParse, "failed to parse ESSCertIDv2 attribute", err)
	} else if ok {
		if len(v2.Certs) == 0 {
			return essBinding{}, model.New(model.ErrCMSParse, "ESSCertIDv2 attribute carries no certificates")
		}
		return parseESSCertIDv2(v2.Certs[0])
	}

	var v1 signingCertificate
	if ok, err := get(oidSigningCertificate, &v1); err != nil {
		return essBinding{}, model.Wrap(model.ErrCMSParse, "failed to parse ESSCertID attribute", err)
	} else if ok {
		if len(v1.Certs) == 0 {
			return essBinding{}, model.New(model.ErrCMSParse, "ESSCertID attribute carries no certificates")
		}
		return essBinding{Present: true, CertHash: v1.Certs[0].CertHash, Digest: "SHA1"}, nil
	}

	return essBinding{Present: false}, nil
}

// parseESSCertIDv2 resolves the "optional hash algorithm defaults to
// SHA-256" subtlety: the first field of the SEQUENCE is either another
// SEQUENCE (an explicit AlgorithmIdentifier, universal tag 0x10/0x30) or
// an OCTET STRING (the bare hash, universal tag 0x04) when the default
// applies.
func parseESSCertIDv2(raw asn1.RawValue) (essBinding, error) {
	fullBytes := raw.FullBytes

	// Unwrap the outer SEQUENCE to look at its first element's tag.
	var seqBody []asn1.RawValue
	_, _ = asn1.Unmarshal(fullBytes, &seqBody)

	if len(seqBody) > 0 && seqBody[0].Class == asn1.ClassUniversal && seqBody[0].Tag == asn1.TagSequence {
		var v essCertIDv2WithAlg
		if _, err := asn1.Unmarshal(fullBytes, &v); err != nil {
			return essBinding{}, model.Wrap(model.ErrCMSParse, "failed to decode ESSCertIDv2 with explicit algorithm", err)
		}
		digest, err := algDigestName(v.HashAlgorithm.Algorithm)
		if err != nil {
			return essBinding{}, err
		}
		return essBinding{Present: true, CertHash: v.CertHash, Digest: digest}, nil
	}

	var v essCertIDv2NoAlg
	if _, err := asn1.Unmarshal(fullBytes, &v); err != nil {
		return essBinding{}, model.Wrap(model.ErrCMSParse, "failed to decode ESSCertIDv2 with default algorithm", err)
	}
	return essBinding{Present: true, CertHash: v.CertHash, Digest: "SHA256"}, nil
}

func algDigestName(oid asn1.ObjectIdentifier) (string, error) {
	switch oid.String() {
	case "1.3.14.3.2.26":
		return "SHA1", nil
	case "2.16.840.1.101.3.4.2.1":
		return "SHA256", nil
	case "2.16.840.1.101.3.4.2.2":
		return "SHA384", nil
	case "2.16.840.1.101.3.4.2.3":
		return "SHA512", nil
	default:
		return "", model.New(model.ErrUnsupportedAlgorithm, "unrecognized ESSCertIDv2 hash algorithm "+oid.String())
	}
}

// hashCert computes the digest of a certificate's DER encoding under the
// named digest algorithm, as required to check an ESS binding.
func hashCert(der []byte, digest string) ([]byte, error) {
	switch digest {
	case "SHA1":
		h := sha1.Sum(der)
		return h[:], nil
	case "SHA256":
		h := sha256.Sum256(der)
		return h[:], nil
	default:
		return nil, model.New(model.ErrUnsupportedAlgorithm, "unsupported ESS binding digest "+digest)
	}
}
