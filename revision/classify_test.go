package revision

import (
	"testing"

	"github.com/digitorus/svtvalidate/model"
)

func rootKey(n int) model.XrefKey { return model.XrefKey{Number: n} }

// baseRevisions builds a two-revision document: revision 0 is the
// original signed document, revision 1 is the incremental update under
// test, described by the set of root-dictionary keys it adds.
func baseRevisions(addedRootKeys ...string) []model.Revision {
	rootID := rootKey(1)

	origRoot := map[string]model.RootValue{
		"Type":  {Kind: model.RootValueName, Name: "Catalog"},
		"Pages": {Kind: model.RootValueIndirectRef, Ref: rootKey(2)},
	}

	newRoot := map[string]model.RootValue{}
	for k, v := range origRoot {
		newRoot[k] = v
	}
	for _, k := range addedRootKeys {
		newRoot[k] = model.RootValue{Kind: model.RootValueIndirectRef, Ref: rootKey(100)}
	}

	revs := []model.Revision{
		{
			XrefTable:    map[model.XrefKey]int64{rootID: 10, rootKey(2): 20},
			RootObjectID: rootID,
			RootObject:   origRoot,
		},
		{
			XrefTable:    map[model.XrefKey]int64{rootID: 1000, rootKey(2): 20, rootKey(100): 2000},
			RootObjectID: rootID,
			RootObject:   newRoot,
		},
	}

	populateDeltas(revs)
	classify(revs)
	return revs
}

func TestClassify_DSSOnlyUpdate_ValidDSS(t *testing.T) {
	revs := baseRevisions("DSS")
	if !revs[1].ValidDSS {
		t.Fatalf("DSS-only update should be a valid DSS revision, got %+v", revs[1])
	}
	if !revs[1].RootUpdate || revs[1].NonRootUpdate {
		t.Fatalf("unexpected delta classification: %+v", revs[1])
	}

	FinalizeSafety(revs)
	if !revs[1].SafeUpdate {
		t.Fatalf("a DSS-only update should be safe even without a signature marker")
	}
}

func TestClassify_AcroFormOnlyUpdate_SafeOnceMarkedAsSignature(t *testing.T) {
	revs := baseRevisions("AcroForm")
	if revs[1].ValidDSS {
		t.Fatalf("AcroForm-only update is not a DSS update, ValidDSS should be false")
	}

	// An AcroForm-only addition isn't itself a DSS update, so until the
	// revision is known to carry a signature it must not be safe.
	FinalizeSafety(revs)
	if revs[1].SafeUpdate {
		t.Fatalf("AcroForm-only update must not be safe before it is known to carry a signature")
	}

	MarkSignature(revs, 1, false)
	FinalizeSafety(revs)
	if !revs[1].SafeUpdate {
		t.Fatalf("AcroForm-only update marked as a signature revision should be safe")
	}
}

func TestClassify_PageAddition_BreaksCoverage(t *testing.T) {
	revs := baseRevisions("DSS")

	// A later revision adds a page: the Pages object itself changes
	// alongside the root update, so the update is no longer root-only.
	rootID := rootKey(1)
	rev2Root := map[string]model.RootValue{}
	for k, v := range revs[1].RootObject {
		rev2Root[k] = v
	}
	revs = append(revs, model.Revision{
		XrefTable: map[model.XrefKey]int64{
			rootID:       5000,
			rootKey(2):   5010,
			rootKey(100): 2000,
		},
		RootObjectID: rootID,
		RootObject:   rev2Root,
	})
	populateDeltas(revs)
	classify(revs)
	MarkSignature(revs, 2, false)
	FinalizeSafety(revs)

	if revs[2].ValidDSS {
		t.Fatalf("a page-addition update must not classify as a valid DSS update")
	}
	if !revs[2].NonRootUpdate {
		t.Fatalf("expected NonRootUpdate for a revision that also changes a non-root object")
	}
	if revs[2].SafeUpdate {
		t.Fatalf("a revision that changes document content outside the root must not be safe")
	}
}

func TestClassify_IllegalRootObject_NotValidDSS(t *testing.T) {
	rootID := rootKey(1)
	origRoot := map[string]model.RootValue{
		"Type": {Kind: model.RootValueName, Name: "Catalog"},
	}
	badRoot := map[string]model.RootValue{
		"Type": {Kind: model.RootValueName, Name: "Catalog"},
		"DSS":  {Kind: model.RootValueOther},
	}
	revs := []model.Revision{
		{XrefTable: map[model.XrefKey]int64{rootID: 10}, RootObjectID: rootID, RootObject: origRoot},
		{XrefTable: map[model.XrefKey]int64{rootID: 20}, RootObjectID: rootID, RootObject: badRoot},
	}
	populateDeltas(revs)
	classify(revs)

	if revs[1].LegalRootObject {
		t.Fatalf("a root object containing an unrecognized value kind must not be legal")
	}
	if revs[1].ValidDSS {
		t.Fatalf("an illegal root object must never classify as a valid DSS update")
	}
}

func TestClassify_ChangedRootItem_NotValidDSS(t *testing.T) {
	rootID := rootKey(1)
	origRoot := map[string]model.RootValue{
		"Type":    {Kind: model.RootValueName, Name: "Catalog"},
		"Version": {Kind: model.RootValueName, Name: "1.7"},
	}
	changedRoot := map[string]model.RootValue{
		"Type":    {Kind: model.RootValueName, Name: "Catalog"},
		"Version": {Kind: model.RootValueName, Name: "2.0"},
		"DSS":     {Kind: model.RootValueIndirectRef, Ref: rootKey(50)},
	}
	revs := []model.Revision{
		{XrefTable: map[model.XrefKey]int64{rootID: 10}, RootObjectID: rootID, RootObject: origRoot},
		{XrefTable: map[model.XrefKey]int64{rootID: 20, rootKey(50): 30}, RootObjectID: rootID, RootObject: changedRoot},
	}
	populateDeltas(revs)
	classify(revs)

	if revs[1].ValidDSS {
		t.Fatalf("a revision that both adds DSS and changes an existing root entry must not be a valid DSS update")
	}
	if len(revs[1].ChangedRootItems) == 0 {
		t.Fatalf("expected Version to be recorded as a changed root item")
	}
}
