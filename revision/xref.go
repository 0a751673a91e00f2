package revision

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/digitorus/svtvalidate/model"
)

// parseClassicXref parses the most recent "xref ... trailer" section
// within prefix (the xref table this revision wrote for itself) into a
// map of in-use object keys to their byte offsets. Cross-reference
// streams are not covered by this scanner; a revision using one fails
// to parse here and is discarded by Analyze, matching §4.4's "a
// revision that fails to parse is discarded" rule.
func parseClassicXref(prefix []byte) (map[model.XrefKey]int64, error) {
	idx := bytes.LastIndex(prefix, []byte("\nxref"))
	if idx < 0 {
		idx = bytes.Index(prefix, []byte("xref"))
		if idx != 0 {
			return nil, model.New(model.ErrBadPDF, "no classic xref table found")
		}
	} else {
		idx++ // skip the leading newline
	}

	section := prefix[idx:]
	if end := bytes.Index(section, []byte("trailer")); end >= 0 {
		section = section[:end]
	}

	scanner := bufio.NewScanner(bytes.NewReader(section))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	table := make(map[model.XrefKey]int64)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if line != "xref" {
				return nil, model.New(model.ErrBadPDF, "malformed xref table header")
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 2 {
			startObj, err1 := strconv.Atoi(fields[0])
			count, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				continue
			}
			for i := 0; i < count; i++ {
				if !scanner.Scan() {
					return nil, model.New(model.ErrBadPDF, "truncated xref subsection")
				}
				entry := strings.Fields(strings.TrimSpace(scanner.Text()))
				if len(entry) < 3 {
					continue
				}
				if entry[2] != "n" {
					continue // free entry
				}
				offset, err := strconv.ParseInt(entry[0], 10, 64)
				if err != nil {
					continue
				}
				gen, err := strconv.Atoi(entry[1])
				if err != nil {
					continue
				}
				table[model.XrefKey{Number: startObj + i, Generation: gen}] = offset
			}
		}
	}

	if len(table) == 0 {
		return nil, model.New(model.ErrBadPDF, "xref table contained no in-use entries")
	}

	return table, nil
}
