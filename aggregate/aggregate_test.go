package aggregate

import (
	"testing"

	"github.com/digitorus/svtvalidate/model"
)

func TestReduce_NoSignatures(t *testing.T) {
	doc := Reduce(nil)
	if doc.Status != model.DocNoSignatures {
		t.Errorf("Status = %v, want %v", doc.Status, model.DocNoSignatures)
	}
	if doc.SignatureCount != 0 || doc.ValidCount != 0 {
		t.Errorf("expected zero counts, got %+v", doc)
	}
}

func TestReduce_AllValid(t *testing.T) {
	doc := Reduce([]model.SignatureResult{{Success: true}, {Success: true}, {Success: true}})
	if doc.Status != model.DocOK {
		t.Errorf("Status = %v, want %v", doc.Status, model.DocOK)
	}
	if doc.ValidCount != 3 || doc.SignatureCount != 3 {
		t.Errorf("ValidCount/SignatureCount = %d/%d, want 3/3", doc.ValidCount, doc.SignatureCount)
	}
}

func TestReduce_NoneValid(t *testing.T) {
	doc := Reduce([]model.SignatureResult{{Success: false}, {Success: false}})
	if doc.Status != model.DocNoneValid {
		t.Errorf("Status = %v, want %v", doc.Status, model.DocNoneValid)
	}
	if doc.ValidCount != 0 {
		t.Errorf("ValidCount = %d, want 0", doc.ValidCount)
	}
}

func TestReduce_SomeInvalid(t *testing.T) {
	doc := Reduce([]model.SignatureResult{{Success: true}, {Success: false}, {Success: true}})
	if doc.Status != model.DocSomeInvalid {
		t.Errorf("Status = %v, want %v", doc.Status, model.DocSomeInvalid)
	}
	if doc.ValidCount != 2 {
		t.Errorf("ValidCount = %d, want 2", doc.ValidCount)
	}
}

func TestReduce_PreservesResultsSlice(t *testing.T) {
	results := []model.SignatureResult{{Success: true}}
	doc := Reduce(results)
	if len(doc.Results) != 1 {
		t.Fatalf("expected Results to carry through unchanged, got %+v", doc.Results)
	}
}
