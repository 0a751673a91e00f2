// Package svt implements the SVT matcher/consumer (C6) and the SVT
// issuer (C7): verifying and binding Signature Validation Tokens carried
// alongside document timestamps, and assembling + signing new ones.
package svt

import (
	"encoding/asn1"

	"github.com/digitorus/pkcs7"
	"github.com/digitorus/svtvalidate/model"
)

// oidSVTToken identifies the unauthenticated attribute of a document
// timestamp's CMS SignedData that carries a compact SVT JWS.
var oidSVTToken = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 99}

// ExtractTokens pulls every compact SVT JWS carried as an unauthenticated
// attribute of a document timestamp's CMS SignedData.
func ExtractTokens(docTimestampContents []byte) ([]string, error) {
	p7, err := pkcs7.Parse(docTimestampContents)
	if err != nil {
		return nil, model.Wrap(model.ErrSVTParseError, "failed to parse document timestamp CMS", err)
	}

	var tokens []string
	for _, s := range p7.Signers {
		for _, attr := range s.UnauthenticatedAttributes {
			if !attr.Type.Equal(oidSVTToken) {
				continue
			}
			var inner asn1.RawValue
			if _, uerr := asn1.Unmarshal(attr.Value.Bytes, &inner); uerr == nil {
				tokens = append(tokens, string(inner.Bytes))
			}
		}
	}
	return tokens, nil
}
