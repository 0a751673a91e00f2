package svtvalidate

import (
	"context"
	"crypto/x509"
	"strings"
	"testing"

	"github.com/digitorus/svtvalidate/internal/testpki"
	"github.com/digitorus/svtvalidate/model"
)

func TestIssuer_Issue_ProducesCompactJWS(t *testing.T) {
	pki := testpki.NewTestPKIWithConfig(t, testpki.TestPKIConfig{Profile: testpki.RSA_2048, IntermediateCAs: 1})
	defer pki.Close()
	pki.StartCRLServer()

	signerKey, signerCert := pki.IssueLeaf("signer")
	_, issuerCert := pki.IssueLeaf("svt-issuer")

	result := model.SignatureResult{
		Success:                   true,
		SignerCertificate:         signerCert,
		SignatureCertificateChain: []*x509.Certificate{signerCert},
		SignatureValueOctets:      []byte("signature-bytes"),
		SignedBytes:               []byte("signed-content-bytes"),
	}

	issuer := NewIssuer(
		WithIssuerIdentity("https://svt.example/issuer"),
		WithDefaultBasicValidation(true),
	)

	svt, err := issuer.Issue(context.Background(), result, signerKey, "RS256", []*x509.Certificate{issuerCert})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if svt.Compact == "" {
		t.Fatal("expected a non-empty compact JWS")
	}
	if strings.Count(svt.Compact, ".") != 2 {
		t.Errorf("compact JWS should have 3 dot-separated parts, got %q", svt.Compact)
	}
	if len(svt.Claims.SigVal) != 1 || svt.Claims.SigVal[0].Conclusion != model.PolicyPassed {
		t.Errorf("expected a default basic-validation pass, got %+v", svt.Claims.SigVal)
	}
}

func TestIssuer_Issue_FailedValidationRecordsFailure(t *testing.T) {
	pki := testpki.NewTestPKIWithConfig(t, testpki.TestPKIConfig{Profile: testpki.RSA_2048, IntermediateCAs: 1})
	defer pki.Close()
	pki.StartCRLServer()

	signerKey, signerCert := pki.IssueLeaf("signer")

	result := model.SignatureResult{
		Success:                   false,
		SignerCertificate:         signerCert,
		SignatureCertificateChain: []*x509.Certificate{signerCert},
		SignatureValueOctets:      []byte("signature-bytes"),
		SignedBytes:               []byte("signed-content-bytes"),
	}

	issuer := NewIssuer(WithDefaultBasicValidation(true))

	svt, err := issuer.Issue(context.Background(), result, signerKey, "RS256", []*x509.Certificate{signerCert})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(svt.Claims.SigVal) != 1 || svt.Claims.SigVal[0].Conclusion != model.PolicyFailed {
		t.Errorf("expected a default basic-validation failure, got %+v", svt.Claims.SigVal)
	}
}
