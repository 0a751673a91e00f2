// Package cms implements the CMS signature parser/verifier (C3): parsing
// a CMS SignedData structure carried in a PDF signature dictionary's
// /Contents, extracting signer information and PAdES binding, and
// verifying the cryptographic signature over the signed bytes.
package cms

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
	"time"

	"github.com/digitorus/pkcs7"
	"github.com/digitorus/svtvalidate/algo"
	"github.com/digitorus/svtvalidate/model"
)

var (
	oidSigningTime         = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 5}
	oidAlgorithmProtection = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 52}
)

// cmsAlgorithmProtection is the RFC 6211 signed attribute.
type cmsAlgorithmProtection struct {
	DigestAlgorithm    algorithmIdentifier
	SignatureAlgorithm algorithmIdentifier `asn1:"optional,tag:1"`
}

// attrGetter abstracts pkcs7.PKCS7.UnmarshalSignedAttribute so the ESS
// and algorithm-protection helpers can be unit tested against a fake.
// The underlying library does not distinguish "attribute absent" from
// "attribute malformed" in its error, so any error here is treated as
// absence - matching the spec's "if ESS attribute is absent" framing.
type attrGetter func(oid asn1.ObjectIdentifier, out interface{}) (bool, error)

// Result is what C3 contributes to a SignatureResult; pdfverify/svt
// merge this into the broader result alongside path-validation and
// coverage fields.
type Result struct {
	SignerCertificate *x509.Certificate
	Chain             []*x509.Certificate

	IsPAdES         bool
	InvalidSignCert bool

	ClaimedSigningTime *time.Time

	CMSDigestAlg string
	CMSSigAlg    string

	AlgoProtectionDigestAlg string
	AlgoProtectionSigAlg    string
	AlgoProtectionPresent   bool

	PublicKeyType model.PublicKeyType
	KeyLength     int
	NamedCurve    string

	SignatureValueOctets []byte

	// EmbeddedTimestampToken is the raw RFC 3161 token carried in the
	// SignerInfo's id-aa-timeStampToken unsigned attribute, if any.
	EmbeddedTimestampToken []byte
}

var oidTimestampToken = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 14}

// Parse parses a DER-encoded CMS SignedData (the signature dictionary's
// /Contents) and verifies the signer's signature over signedBytes (the
// byte-range content). It never panics on malformed input.
func Parse(contents []byte, signedBytes []byte) (*Result, error) {
	p7, err := pkcs7.Parse(contents)
	if err != nil {
		return nil, model.Wrap(model.ErrCMSParse, "failed to parse CMS SignedData", err)
	}
	p7.Content = signedBytes

	if len(p7.Signers) == 0 {
		return nil, model.New(model.ErrCMSParse, "SignedData carries no SignerInfo")
	}
	signerInfo := p7.Signers[0]

	signerCert := findSignerCert(p7.Certificates, signerInfo)
	if signerCert == nil {
		return nil, model.New(model.ErrCMSParse, "unable to locate signer certificate from SignerInfo SID")
	}

	get := func(oid asn1.ObjectIdentifier, out interface{}) (bool, error) {
		if uerr := p7.UnmarshalSignedAttribute(oid, out); uerr != nil {
			return false, nil
		}
		return true, nil
	}

	res := &Result{
		SignerCertificate: signerCert,
		Chain:             p7.Certificates,
	}

	// PAdES binding (ESSCertID / ESSCertIDv2).
	binding, err := extractESSBinding(get)
	if err != nil {
		return nil, err
	}
	if !binding.Present {
		res.IsPAdES = false
		res.InvalidSignCert = false
	} else {
		computed, herr := hashCert(signerCert.Raw, binding.Digest)
		if herr != nil {
			return nil, herr
		}
		if !bytes.Equal(computed, binding.CertHash) {
			res.InvalidSignCert = true
			res.IsPAdES = true
		} else {
			res.InvalidSignCert = false
			res.IsPAdES = true
		}
	}

	// Signing-time attribute (claimed, untrusted time).
	var signingTime time.Time
	if present, terr := get(oidSigningTime, &signingTime); terr == nil && present {
		res.ClaimedSigningTime = &signingTime
	}

	// Algorithm protection (RFC 6211).
	var algoProt cmsAlgorithmProtection
	if present, aerr := get(oidAlgorithmProtection, &algoProt); aerr != nil {
		return nil, model.Wrap(model.ErrCMSParse, "failed to parse algorithm protection attribute", aerr)
	} else if present {
		digestName, derr := algDigestName(algoProt.DigestAlgorithm.Algorithm)
		if derr != nil {
			return nil, derr
		}
		res.AlgoProtectionPresent = true
		res.AlgoProtectionDigestAlg = digestName
		if len(algoProt.SignatureAlgorithm.Algorithm) > 0 {
			sigInfo, serr := algo.LookupOID(algoProt.SignatureAlgorithm.Algorithm)
			if serr != nil {
				return nil, serr
			}
			res.AlgoProtectionSigAlg = sigInfo.CanonicalURI
		}
	}

	// Actual digest/signature algorithm used, from the SignerInfo itself.
	digestName, derr := algo.DigestName(signerInfo.DigestAlgorithm.Algorithm)
	if derr != nil {
		return nil, derr
	}
	res.CMSDigestAlg = digestName

	sigInfo, serr := algo.LookupOID(signerInfo.DigestEncryptionAlgorithm.Algorithm)
	if serr != nil {
		return nil, serr
	}
	res.CMSSigAlg = sigInfo.CanonicalURI
	res.PublicKeyType = sigInfo.KeyType

	if res.AlgoProtectionPresent {
		if res.AlgoProtectionDigestAlg != res.CMSDigestAlg || (res.AlgoProtectionSigAlg != "" && res.AlgoProtectionSigAlg != res.CMSSigAlg) {
			return nil, model.New(model.ErrAlgorithmMismatch, "CMS algorithm protection attribute does not match the algorithms actually used")
		}
	}

	// Public key parameters for reporting.
	keyType, bits, curve := keyParamsFromCert(signerCert)
	res.PublicKeyType = keyType
	res.KeyLength = bits
	res.NamedCurve = curve

	// Cryptographic signature verification.
	certPool := x509.NewCertPool()
	for _, c := range p7.Certificates {
		certPool.AddCert(c)
	}
	if verr := p7.VerifyWithChain(certPool); verr != nil {
		if verr := p7.Verify(); verr != nil {
			return nil, model.Wrap(model.ErrCMSVerify, "signature verification failed", verr)
		}
	}

	res.SignatureValueOctets = signerInfo.EncryptedDigest

	for _, attr := range signerInfo.UnauthenticatedAttributes {
		if attr.Type.Equal(oidTimestampToken) {
			res.EmbeddedTimestampToken = attr.Value.Bytes
			break
		}
	}

	return res, nil
}

func findSignerCert(certs []*x509.Certificate, signerInfo pkcs7.SignerInfo) *x509.Certificate {
	for _, cert := range certs {
		if cert.SerialNumber.Cmp(signerInfo.IssuerAndSerialNumber.SerialNumber) == 0 &&
			bytes.Equal(cert.RawIssuer, signerInfo.IssuerAndSerialNumber.IssuerName.FullBytes) {
			return cert
		}
	}
	return nil
}

func keyParamsFromCert(cert *x509.Certificate) (model.PublicKeyType, int, string) {
	return algo.KeyParams(cert.PublicKey)
}
