package revision

import (
	"testing"

	"github.com/digitorus/svtvalidate/model"
)

func TestDiffRoots_ArrayOrderMatters(t *testing.T) {
	oldRoot := map[string]model.RootValue{
		"Extensions": {Kind: model.RootValueArray, Array: []model.RootValue{
			{Kind: model.RootValueName, Name: "ESIC"},
			{Kind: model.RootValueName, Name: "ADBE"},
		}},
	}
	newRoot := map[string]model.RootValue{
		"Extensions": {Kind: model.RootValueArray, Array: []model.RootValue{
			{Kind: model.RootValueName, Name: "ADBE"},
			{Kind: model.RootValueName, Name: "ESIC"},
		}},
	}

	added, changed, legal := diffRoots(oldRoot, newRoot)
	if len(added) != 0 {
		t.Fatalf("expected no added keys, got %v", added)
	}
	if !legal {
		t.Fatalf("reordered array should not make the root illegal")
	}
	if !changed["Extensions"] {
		t.Fatalf("expected Extensions to be reported changed when array order differs")
	}
}

func TestDiffRoots_NestedDictEqualByPresence(t *testing.T) {
	oldRoot := map[string]model.RootValue{
		"AcroForm": {Kind: model.RootValueNestedDict},
	}
	newRoot := map[string]model.RootValue{
		"AcroForm": {Kind: model.RootValueNestedDict},
	}

	added, changed, legal := diffRoots(oldRoot, newRoot)
	if len(added) != 0 || len(changed) != 0 || !legal {
		t.Fatalf("two nested dicts of the same key should compare equal by presence alone, got added=%v changed=%v legal=%v", added, changed, legal)
	}
}

func TestDiffRoots_AddedKeyRecorded(t *testing.T) {
	oldRoot := map[string]model.RootValue{
		"Type": {Kind: model.RootValueName, Name: "Catalog"},
	}
	newRoot := map[string]model.RootValue{
		"Type": {Kind: model.RootValueName, Name: "Catalog"},
		"DSS":  {Kind: model.RootValueIndirectRef, Ref: model.XrefKey{Number: 42}},
	}

	added, changed, legal := diffRoots(oldRoot, newRoot)
	if !added["DSS"] {
		t.Fatalf("expected DSS to be recorded as added")
	}
	if len(changed) != 0 || !legal {
		t.Fatalf("unexpected changed=%v legal=%v", changed, legal)
	}
}

func TestDiffRoots_OtherKindIsIllegal(t *testing.T) {
	oldRoot := map[string]model.RootValue{
		"Type": {Kind: model.RootValueName, Name: "Catalog"},
	}
	newRoot := map[string]model.RootValue{
		"Type":    {Kind: model.RootValueName, Name: "Catalog"},
		"Unknown": {Kind: model.RootValueOther},
	}

	_, _, legal := diffRoots(oldRoot, newRoot)
	if legal {
		t.Fatalf("a root entry of unrecognized kind must make the root illegal")
	}
}
