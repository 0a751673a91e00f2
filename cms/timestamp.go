package cms

import (
	"bytes"

	"github.com/digitorus/pkcs7"
	"github.com/digitorus/svtvalidate/algo"
	"github.com/digitorus/svtvalidate/model"
	"github.com/digitorus/timestamp"
)

// ParseTimestampToken parses an RFC 3161 timestamp token - a CMS
// SignedData whose eContent is the TSTInfo - verifies the token's own
// signature and checks its MessageImprint against hashedContent. It
// covers both shapes a token appears in: a PDF DocTimeStamp's own
// /Contents (hashedContent is the signature's byte range) and a content
// signature's id-aa-timeStampToken unsigned attribute (hashedContent is
// the signature value octets it attests to).
func ParseTimestampToken(tokenBytes []byte, hashedContent []byte) (*Result, *timestamp.Timestamp, error) {
	ts, err := timestamp.Parse(tokenBytes)
	if err != nil {
		return nil, nil, model.Wrap(model.ErrTimestampVerifyError, "failed to parse timestamp token", err)
	}

	h := ts.HashAlgorithm.New()
	h.Write(hashedContent)
	if !bytes.Equal(h.Sum(nil), ts.HashedMessage) {
		return nil, nil, model.New(model.ErrTimestampVerifyError, "timestamp MessageImprint does not match signed content")
	}

	p7, err := pkcs7.Parse(tokenBytes)
	if err != nil {
		return nil, nil, model.Wrap(model.ErrTimestampVerifyError, "failed to parse timestamp CMS SignedData", err)
	}
	if len(p7.Signers) == 0 {
		return nil, nil, model.New(model.ErrTimestampVerifyError, "timestamp token carries no SignerInfo")
	}
	signerInfo := p7.Signers[0]
	signerCert := findSignerCert(p7.Certificates, signerInfo)

	if verr := p7.Verify(); verr != nil {
		return nil, nil, model.Wrap(model.ErrTimestampVerifyError, "timestamp signature verification failed", verr)
	}

	res := &Result{
		SignerCertificate: signerCert,
		Chain:             p7.Certificates,
	}

	if digestName, derr := algo.DigestName(signerInfo.DigestAlgorithm.Algorithm); derr == nil {
		res.CMSDigestAlg = digestName
	}
	if sigInfo, serr := algo.LookupOID(signerInfo.DigestEncryptionAlgorithm.Algorithm); serr == nil {
		res.CMSSigAlg = sigInfo.CanonicalURI
	}
	if signerCert != nil {
		keyType, bits, curve := keyParamsFromCert(signerCert)
		res.PublicKeyType = keyType
		res.KeyLength = bits
		res.NamedCurve = curve
	}

	return res, ts, nil
}
