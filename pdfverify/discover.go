// Package pdfverify implements the PDF signature verifier (C5): per
// signature-dictionary orchestration of CMS parsing, certificate path
// validation and embedded timestamp verification.
package pdfverify

import (
	"bytes"

	"github.com/digitorus/pdf"
	"github.com/digitorus/svtvalidate/model"
)

// SignatureField is one signature value dictionary found in a document's
// AcroForm, together with the classification pdfverify needs to process
// it: whether it is a document timestamp (SubFilter ETSI.RFC3161) rather
// than a content signature.
type SignatureField struct {
	FieldName      string
	Value          pdf.Value
	IsDocTimestamp bool
}

// Discover walks the document's cross-reference table for signature value
// dictionaries, grounded on the same Filter == Adobe.PPKLite walk the
// original reader used, rather than only the AcroForm/Fields tree - some
// producers leave stale field-less signature objects reachable only via
// the xref table.
func Discover(pdfBytes []byte) ([]SignatureField, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return nil, model.Wrap(model.ErrBadPDF, "failed to open document", err)
	}

	sigFlags := rdr.Trailer().Key("Root").Key("AcroForm").Key("SigFlags")
	if sigFlags.IsNull() {
		return nil, model.New(model.ErrNoSignatures, "document has no AcroForm SigFlags entry")
	}

	var fields []SignatureField
	for _, x := range rdr.Xref() {
		v := rdr.Resolve(x.Ptr(), x.Ptr())
		if v.Key("Filter").Name() != "Adobe.PPKLite" {
			continue
		}
		fields = append(fields, SignatureField{
			FieldName:      v.Key("Name").Text(),
			Value:          v,
			IsDocTimestamp: v.Key("SubFilter").Name() == "ETSI.RFC3161",
		})
	}

	if len(fields) == 0 {
		return nil, model.New(model.ErrNoSignatures, "document carries no signature dictionaries")
	}

	return fields, nil
}
