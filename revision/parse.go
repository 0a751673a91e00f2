package revision

import (
	"bytes"

	"github.com/digitorus/pdf"
	"github.com/digitorus/svtvalidate/model"
)

// parseRevision re-parses one revision prefix as a complete PDF,
// obtaining its trailer, xref table, and catalog dictionary.
func parseRevision(prefix []byte) (model.Revision, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(prefix), int64(len(prefix)))
	if err != nil {
		return model.Revision{}, model.Wrap(model.ErrBadPDF, "failed to parse revision", err)
	}

	xrefTable, err := parseClassicXref(prefix)
	if err != nil {
		return model.Revision{}, err
	}

	root := rdr.Trailer().Key("Root")
	if root.Kind() != pdf.Dict {
		return model.Revision{}, model.New(model.ErrBadPDF, "trailer Root is not a dictionary")
	}

	rootPtr := root.GetPtr()
	rootObject := make(map[string]model.RootValue)
	for _, key := range root.Keys() {
		rootObject[key] = toRootValue(root.Key(key))
	}

	return model.Revision{
		XrefTable:    xrefTable,
		RootObjectID: model.XrefKey{Number: int(rootPtr.GetID()), Generation: int(rootPtr.GetGen())},
		RootObject:   rootObject,
	}, nil
}
