// Package certref implements the certificate reference encoder (C2): it
// produces the compact cert_ref claim carried inside an SVT from a
// signer certificate, the signature's own chain, and the path a
// certificate-path validator actually constructed.
package certref

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"hash"

	"github.com/digitorus/svtvalidate/model"
)

// Digest is the subset of hash.Hash the encoder needs; callers pass a
// fresh hasher factory so the same digest algorithm used for the target
// JWS alg is used here.
type Digest func() hash.Hash

// Encode implements the §4.2 rule:
//   - if the validated path V is non-empty and not a DER-byte subset of
//     the signature's own chain C, emit the full chain leaf->anchor;
//   - else if len(C) < 2, emit chain_hash over just the signer cert;
//   - else emit chain_hash over the signer cert and the concatenation
//     of the whole chain.
func Encode(signer *x509.Certificate, chain []*x509.Certificate, validatedPath []*x509.Certificate, d Digest) (model.CertRef, error) {
	if signer == nil {
		return model.CertRef{}, model.New(model.ErrInternalInvariantViolation, "certref: nil signer certificate")
	}

	if len(validatedPath) > 0 && !isSubset(validatedPath, chain) {
		ref := make([]string, 0, len(validatedPath))
		for _, c := range validatedPath {
			ref = append(ref, base64.StdEncoding.EncodeToString(c.Raw))
		}
		return model.CertRef{Type: model.CertRefChain, Ref: ref}, nil
	}

	if len(chain) < 2 {
		return model.CertRef{
			Type: model.CertRefChainHash,
			Ref:  []string{digestBase64(d, signer.Raw)},
		}, nil
	}

	h := d()
	for _, c := range chain {
		h.Write(c.Raw)
	}
	concatHash := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return model.CertRef{
		Type: model.CertRefChainHash,
		Ref:  []string{digestBase64(d, signer.Raw), concatHash},
	}, nil
}

func digestBase64(d Digest, der []byte) string {
	h := d()
	h.Write(der)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// isSubset reports whether every certificate in v (by DER bytes) is
// present in c, i.e. set inclusion of V in C. Set equality per §4.2 is
// "V is not a subset of C" - a validated path that strictly extends or
// diverges from the embedded chain triggers the full-chain encoding.
func isSubset(v, c []*x509.Certificate) bool {
	for _, vc := range v {
		found := false
		for _, cc := range c {
			if bytes.Equal(vc.Raw, cc.Raw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
