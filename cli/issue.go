package cli

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/digitorus/svtvalidate"
	"github.com/digitorus/svtvalidate/pathvalidator"
)

func IssueCommand() {
	issueFlags := flag.NewFlagSet("issue", flag.ExitOnError)

	var alg, iss string
	var sigIndex int
	var defaultBasicValidation bool

	issueFlags.StringVar(&alg, "alg", "RS256", "JWS algorithm to sign the token with (RS256, PS256, ES256, EdDSA, ...)")
	issueFlags.StringVar(&iss, "iss", "", "Issuer identity recorded on the token")
	issueFlags.IntVar(&sigIndex, "signature", 0, "Index of the PDF's signature to attest, in document order")
	issueFlags.BoolVar(&defaultBasicValidation, "default-basic-validation", true, "Record a basic-validation policy outcome when the validated signature carries none")

	issueFlags.Usage = func() {
		fmt.Printf("Usage: %s issue [options] <input.pdf> <issuer.crt> <issuer.key> [chain.crt]\n\n", os.Args[0])
		fmt.Println("Validate a PDF's signature and sign a Signature Validation Token over the result")
		fmt.Println("\nOptions:")
		issueFlags.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Printf("  %s issue -iss \"https://tsa.example/svt\" document.pdf issuer.crt issuer.key\n", os.Args[0])
	}

	if err := issueFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("failed to parse issue flags: %v", err)
	}

	if len(issueFlags.Args()) < 3 {
		issueFlags.Usage()
		osExit(1)
		return
	}

	args := issueFlags.Args()
	IssueSVT(args[0], args[1], args[2], optionalArg(args, 3), alg, iss, sigIndex, defaultBasicValidation)
}

func optionalArg(args []string, idx int) string {
	if idx < len(args) {
		return args[idx]
	}
	return ""
}

func IssueSVT(input, certPath, keyPath, chainPath, alg, iss string, sigIndex int, defaultBasicValidation bool) {
	pdfBytes, err := os.ReadFile(input)
	if err != nil {
		log.Print(err)
		osExit(1)
		return
	}

	issuerCert, signer := loadIssuerCertAndKey(certPath, keyPath)
	issuerCerts := []*x509.Certificate{issuerCert}
	if chainPath != "" {
		issuerCerts = append(issuerCerts, loadCertificateBundle(chainPath)...)
	}

	pv := pathvalidator.New(pathvalidator.WithTrustedRoots(nil), pathvalidator.WithAllowUntrustedRoots(true))
	validator := svtvalidate.NewValidator(pv)

	results, err := validator.Validate(context.Background(), pdfBytes)
	if err != nil {
		log.Print(err)
		osExit(1)
		return
	}
	if sigIndex < 0 || sigIndex >= len(results) {
		log.Printf("signature index %d out of range (document has %d signatures)", sigIndex, len(results))
		osExit(1)
		return
	}

	issuer := svtvalidate.NewIssuer(
		svtvalidate.WithIssuerIdentity(iss),
		svtvalidate.WithDefaultBasicValidation(defaultBasicValidation),
	)

	svt, err := issuer.Issue(context.Background(), results[sigIndex], signer, alg, issuerCerts)
	if err != nil {
		log.Print(err)
		osExit(1)
		return
	}

	fmt.Println(svt.Compact)
}

func loadIssuerCertAndKey(certPath, keyPath string) (*x509.Certificate, crypto.Signer) {
	certData, err := os.ReadFile(certPath)
	if err != nil {
		log.Fatal(err)
	}
	certBlock, _ := pem.Decode(certData)
	var certDER []byte
	if certBlock != nil {
		certDER = certBlock.Bytes
	} else {
		certDER = certData
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		log.Fatal(fmt.Errorf("failed to parse issuer certificate: %w", err))
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		log.Fatal(err)
	}
	keyBlock, _ := pem.Decode(keyData)
	if keyBlock == nil {
		log.Fatal(errors.New("failed to parse PEM block containing the issuer private key"))
	}

	signer, err := parsePrivateKey(keyBlock.Bytes)
	if err != nil {
		log.Fatal(err)
	}

	return cert, signer
}

func parsePrivateKey(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key as PKCS#1, EC, or PKCS#8: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, errors.New("private key does not implement crypto.Signer")
	}
	return signer, nil
}

func loadCertificateBundle(path string) []*x509.Certificate {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			continue
		}
		certs = append(certs, cert)
	}
	return certs
}
