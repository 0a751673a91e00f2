package algo

import (
	"crypto"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/digitorus/svtvalidate/model"
)

var digestConstructors = map[string]func() hash.Hash{
	"SHA1":   sha1.New,
	"SHA256": sha256.New,
	"SHA384": sha512.New384,
	"SHA512": sha512.New,
}

var digestCryptoHash = map[string]crypto.Hash{
	"SHA1":   crypto.SHA1,
	"SHA256": crypto.SHA256,
	"SHA384": crypto.SHA384,
	"SHA512": crypto.SHA512,
}

// DigestConstructor resolves a canonical digest name (as returned by
// DigestName/JWSAlgDigest) to a fresh hash.Hash factory.
func DigestConstructor(name string) (func() hash.Hash, error) {
	h, ok := digestConstructors[name]
	if !ok {
		return nil, model.New(model.ErrUnsupportedAlgorithm, "unrecognized digest name "+name)
	}
	return h, nil
}

// CryptoHash resolves a canonical digest name to its crypto.Hash value,
// as needed by crypto.Signer.Sign's opts parameter.
func CryptoHash(name string) (crypto.Hash, error) {
	h, ok := digestCryptoHash[name]
	if !ok {
		return 0, model.New(model.ErrUnsupportedAlgorithm, "unrecognized digest name "+name)
	}
	return h, nil
}
