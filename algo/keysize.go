package algo

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"

	"github.com/digitorus/svtvalidate/model"
)

// KeyParams reports the reportable key type, length and curve for a
// public key, mirroring the fields SignatureResult carries for display.
func KeyParams(pub interface{}) (keyType model.PublicKeyType, bits int, curve string) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return model.KeyTypeRSA, k.N.BitLen(), ""
	case *ecdsa.PublicKey:
		return model.KeyTypeEC, k.Params().BitSize, k.Params().Name
	case ed25519.PublicKey:
		return model.KeyTypeEdDSA, 256, ""
	default:
		return model.KeyTypeOther, 0, ""
	}
}
