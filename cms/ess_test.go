package cms

import (
	"crypto/sha256"
	"encoding/asn1"
	"testing"
)

// fakeAttrGetter builds an attrGetter over a fixed table of
// OID -> DER-encoded attribute value, mimicking pkcs7's
// UnmarshalSignedAttribute for a single signed-attributes set.
func fakeAttrGetter(table map[string][]byte) attrGetter {
	return func(oid asn1.ObjectIdentifier, out interface{}) (bool, error) {
		der, ok := table[oid.String()]
		if !ok {
			return false, nil
		}
		if _, err := asn1.Unmarshal(der, out); err != nil {
			return false, err
		}
		return true, nil
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	der, err := asn1.Marshal(v)
	if err != nil {
		t.Fatalf("asn1.Marshal: %v", err)
	}
	return der
}

func TestExtractESSBinding_V2_OctetStringDefaultsToSHA256(t *testing.T) {
	hash := sha256.Sum256([]byte("cert-der-bytes"))

	cert := mustMarshal(t, essCertIDv2NoAlg{CertHash: hash[:]})
	v2 := mustMarshal(t, signingCertificateV2Raw{Certs: []asn1.RawValue{{FullBytes: cert}}})

	get := fakeAttrGetter(map[string][]byte{
		oidSigningCertificateV2.String(): v2,
	})

	binding, err := extractESSBinding(get)
	if err != nil {
		t.Fatalf("extractESSBinding: %v", err)
	}
	if !binding.Present {
		t.Fatal("expected an ESS binding to be present")
	}
	if binding.Digest != "SHA256" {
		t.Fatalf("Digest = %q, want SHA256 (the default for the bare-OCTET-STRING encoding)", binding.Digest)
	}
	if string(binding.CertHash) != string(hash[:]) {
		t.Fatalf("CertHash mismatch")
	}
}

func TestExtractESSBinding_V2_ExplicitAlgorithmSequence(t *testing.T) {
	hash := sha256.Sum256([]byte("other-cert-der"))

	cert := mustMarshal(t, essCertIDv2WithAlg{
		HashAlgorithm: algorithmIdentifier{Algorithm: asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}},
		CertHash:      hash[:],
	})
	v2 := mustMarshal(t, signingCertificateV2Raw{Certs: []asn1.RawValue{{FullBytes: cert}}})

	get := fakeAttrGetter(map[string][]byte{
		oidSigningCertificateV2.String(): v2,
	})

	binding, err := extractESSBinding(get)
	if err != nil {
		t.Fatalf("extractESSBinding: %v", err)
	}
	if binding.Digest != "SHA256" {
		t.Fatalf("Digest = %q, want SHA256 (explicit AlgorithmIdentifier)", binding.Digest)
	}
	if string(binding.CertHash) != string(hash[:]) {
		t.Fatalf("CertHash mismatch")
	}
}

func TestExtractESSBinding_V1FallbackWhenV2Absent(t *testing.T) {
	hash := [20]byte{1, 2, 3}

	v1 := mustMarshal(t, signingCertificate{Certs: []essCertID{{CertHash: hash[:]}}})

	get := fakeAttrGetter(map[string][]byte{
		oidSigningCertificate.String(): v1,
	})

	binding, err := extractESSBinding(get)
	if err != nil {
		t.Fatalf("extractESSBinding: %v", err)
	}
	if !binding.Present {
		t.Fatal("expected a v1 ESS binding to be present")
	}
	if binding.Digest != "SHA1" {
		t.Fatalf("Digest = %q, want SHA1 for the v1 attribute", binding.Digest)
	}
}

func TestExtractESSBinding_AbsentIsNotAnError(t *testing.T) {
	get := fakeAttrGetter(map[string][]byte{})

	binding, err := extractESSBinding(get)
	if err != nil {
		t.Fatalf("extractESSBinding: %v", err)
	}
	if binding.Present {
		t.Fatal("expected no ESS binding when neither attribute is present")
	}
}

func TestAlgDigestName_UnrecognizedOID(t *testing.T) {
	_, err := algDigestName(asn1.ObjectIdentifier{1, 2, 3, 4, 5})
	if err == nil {
		t.Fatal("expected an error for an unrecognized digest OID")
	}
}

func TestHashCert_RoundTrip(t *testing.T) {
	der := []byte("a fake certificate body")
	want := sha256.Sum256(der)

	got, err := hashCert(der, "SHA256")
	if err != nil {
		t.Fatalf("hashCert: %v", err)
	}
	if string(got) != string(want[:]) {
		t.Fatalf("hashCert mismatch")
	}
}
