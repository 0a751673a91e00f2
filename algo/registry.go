// Package algo is the process-wide algorithm registry (C1): OID/URI/JWS
// algorithm identifier lookups and key-length/curve lookups. The tables
// are built once at package init and are never mutated after the first
// validation call, per the concurrency model's registration-extension
// rule.
package algo

import (
	"crypto/x509"
	"encoding/asn1"

	"github.com/digitorus/svtvalidate/model"
)

// KeyType mirrors model.PublicKeyType but is kept local so the registry
// has no dependency cycle back onto result construction.
type KeyType = model.PublicKeyType

// AlgorithmInfo is what an OID resolves to.
type AlgorithmInfo struct {
	KeyType      KeyType
	Digest       x509.SignatureAlgorithm // informational, best-effort
	CanonicalURI string
}

// CurveInfo is what a named-curve OID resolves to.
type CurveInfo struct {
	Name        string
	KeyLengthBits int
}

var oidTable = map[string]AlgorithmInfo{
	// RSA PKCS#1 v1.5
	"1.2.840.113549.1.1.5":  {model.KeyTypeRSA, x509.SHA1WithRSA, "http://www.w3.org/2000/09/xmldsig#rsa-sha1"},
	"1.2.840.113549.1.1.11": {model.KeyTypeRSA, x509.SHA256WithRSA, "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"},
	"1.2.840.113549.1.1.12": {model.KeyTypeRSA, x509.SHA384WithRSA, "http://www.w3.org/2001/04/xmldsig-more#rsa-sha384"},
	"1.2.840.113549.1.1.13": {model.KeyTypeRSA, x509.SHA512WithRSA, "http://www.w3.org/2001/04/xmldsig-more#rsa-sha512"},
	// RSASSA-PSS (actual digest carried in AlgorithmIdentifier params; URI here is the generic PSS URI)
	"1.2.840.113549.1.1.10": {model.KeyTypeRSA, x509.SHA256WithRSAPSS, "http://www.w3.org/2007/05/xmldsig-more#rsa-pss"},
	// ECDSA
	"1.2.840.10045.4.3.2": {model.KeyTypeEC, x509.ECDSAWithSHA256, "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha256"},
	"1.2.840.10045.4.3.3": {model.KeyTypeEC, x509.ECDSAWithSHA384, "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha384"},
	"1.2.840.10045.4.3.4": {model.KeyTypeEC, x509.ECDSAWithSHA512, "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha512"},
	// Ed25519
	"1.3.101.112": {model.KeyTypeEdDSA, x509.PureEd25519, "http://www.w3.org/2021/03/xmldsig-more#eddsa-ed25519"},
}

var curveTable = map[string]CurveInfo{
	"1.2.840.10045.3.1.7": {"P-256", 256},
	"1.3.132.0.34":        {"P-384", 384},
	"1.3.132.0.35":        {"P-521", 521},
}

// digestOIDTable maps digest algorithm OIDs to their canonical short name,
// used to cross-check CMS algorithm-protection attributes and to resolve
// the digest implied by a JWS alg.
var digestOIDTable = map[string]string{
	"1.3.14.3.2.26":           "SHA1",
	"2.16.840.1.101.3.4.2.1":  "SHA256",
	"2.16.840.1.101.3.4.2.2":  "SHA384",
	"2.16.840.1.101.3.4.2.3":  "SHA512",
}

// jwsDigestTable maps a registry-recognized JWS alg to the digest name
// implied by it - every hash inside an SVT claim set uses this digest.
var jwsDigestTable = map[string]string{
	"RS256": "SHA256",
	"RS384": "SHA384",
	"RS512": "SHA512",
	"PS256": "SHA256",
	"PS384": "SHA384",
	"PS512": "SHA512",
	"ES256": "SHA256",
	"ES384": "SHA384",
	"ES512": "SHA512",
	"EdDSA": "SHA512",
}

// uriToJWSAlg maps a canonical signature algorithm URI to its JWS alg
// identifier (used when issuing/verifying SVTs tied to a given signature
// algorithm).
var uriToJWSAlg = map[string]string{
	"http://www.w3.org/2001/04/xmldsig-more#rsa-sha256":   "RS256",
	"http://www.w3.org/2001/04/xmldsig-more#rsa-sha384":   "RS384",
	"http://www.w3.org/2001/04/xmldsig-more#rsa-sha512":   "RS512",
	"http://www.w3.org/2007/05/xmldsig-more#rsa-pss":      "PS256",
	"http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha256": "ES256",
	"http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha384": "ES384",
	"http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha512": "ES512",
	"http://www.w3.org/2021/03/xmldsig-more#eddsa-ed25519": "EdDSA",
}

// LookupOID resolves a signature algorithm OID to its key type, digest
// and canonical URI.
func LookupOID(oid asn1.ObjectIdentifier) (AlgorithmInfo, error) {
	info, ok := oidTable[oid.String()]
	if !ok {
		return AlgorithmInfo{}, model.New(model.ErrUnsupportedAlgorithm, "unrecognized signature algorithm OID "+oid.String())
	}
	return info, nil
}

// URIToJWSAlg resolves a canonical signature algorithm URI to the JWS
// alg identifier that should sign/verify claims over it.
func URIToJWSAlg(uri string) (string, error) {
	alg, ok := uriToJWSAlg[uri]
	if !ok {
		return "", model.New(model.ErrUnsupportedAlgorithm, "no JWS algorithm for URI "+uri)
	}
	return alg, nil
}

// JWSAlgDigest resolves the digest algorithm implied by a JWS alg, as
// used for every hash carried inside an SVT claim set.
func JWSAlgDigest(jwsAlg string) (string, error) {
	d, ok := jwsDigestTable[jwsAlg]
	if !ok {
		return "", model.New(model.ErrUnsupportedAlgorithm, "unrecognized JWS algorithm "+jwsAlg)
	}
	return d, nil
}

// JWSAlgToURI resolves a JWS alg identifier back to the canonical
// signature algorithm URI, the reverse of URIToJWSAlg - used when an SVT
// binding replaces a signature's reported algorithm with the SVT JWS's
// own.
func JWSAlgToURI(jwsAlg string) (string, error) {
	for uri, alg := range uriToJWSAlg {
		if alg == jwsAlg {
			return uri, nil
		}
	}
	return "", model.New(model.ErrUnsupportedAlgorithm, "no canonical URI for JWS algorithm "+jwsAlg)
}

// LookupCurve resolves a named-curve OID to its name and key length.
func LookupCurve(oid asn1.ObjectIdentifier) (CurveInfo, error) {
	info, ok := curveTable[oid.String()]
	if !ok {
		return CurveInfo{}, model.New(model.ErrUnsupportedAlgorithm, "unrecognized curve OID "+oid.String())
	}
	return info, nil
}

// DigestName resolves a digest algorithm OID to its canonical short name.
func DigestName(oid asn1.ObjectIdentifier) (string, error) {
	name, ok := digestOIDTable[oid.String()]
	if !ok {
		return "", model.New(model.ErrUnsupportedAlgorithm, "unrecognized digest OID "+oid.String())
	}
	return name, nil
}
