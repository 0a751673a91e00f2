package pdfverify

import (
	"io"

	"github.com/digitorus/pdf"
	"github.com/digitorus/svtvalidate/model"
)

// readByteRange reads the content covered by a signature's /ByteRange,
// concatenating the disjoint parts into the exact bytes that were signed,
// and reports the total length of the file as of this signature (the end
// of the final range) so the caller can locate the revision it belongs to.
func readByteRange(v pdf.Value, file io.ReaderAt) (content []byte, totalLength int64, err error) {
	br := v.Key("ByteRange")
	if br.Len() == 0 || br.Len()%2 != 0 {
		return nil, 0, model.New(model.ErrBadPDF, "invalid or missing ByteRange")
	}

	var parts []io.Reader
	var signedSize int64
	for i := 0; i < br.Len(); i += 2 {
		offset := br.Index(i).Int64()
		length := br.Index(i + 1).Int64()
		parts = append(parts, io.NewSectionReader(file, offset, length))
		signedSize += length
		if end := offset + length; end > totalLength {
			totalLength = end
		}
	}

	content = make([]byte, signedSize)
	if _, rerr := io.ReadFull(io.MultiReader(parts...), content); rerr != nil {
		return nil, 0, model.Wrap(model.ErrBadPDF, "failed to read signed byte range", rerr)
	}

	return content, totalLength, nil
}
