package tripinfo

import (
	"encoding/xml"
	"strings"
)

// ExpectedSet is the universe of vehicles a run was expected to generate,
// read once from the reference trip-demand file.
type ExpectedSet struct {
	IDs    map[string]struct{}
	ByType map[string]map[string]struct{}
}

// Count returns how many expected vehicles carry the given normalized type.
func (e *ExpectedSet) Count(vtype string) int {
	return len(e.ByType[vtype])
}

// LoadExpected reads every trip element of the reference file. Trips
// without an id or a type are ignored. A missing file or malformed XML is an
// error.
func LoadExpected(path string) (*ExpectedSet, error) {
	set := &ExpectedSet{
		IDs:    make(map[string]struct{}),
		ByType: make(map[string]map[string]struct{}),
	}
	err := decodeFile(path, "trip", func(attrs []xml.Attr) {
		id, _ := attr(attrs, "id")
		vtype := typeAttr(attrs)
		if id == "" || vtype == "" {
			return
		}
		id = strings.TrimSpace(id)
		base := NormalizeType(vtype)
		set.IDs[id] = struct{}{}
		if set.ByType[base] == nil {
			set.ByType[base] = make(map[string]struct{})
		}
		set.ByType[base][id] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
