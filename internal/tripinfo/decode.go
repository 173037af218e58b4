// Package tripinfo reads the simulator's XML outputs: the reference trip
// demand, the per-run vehicle-route logs and the per-run trip-info logs.
package tripinfo

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// DecodeElements streams r and calls fn for every start element whose local
// name is name, at any depth. Errors from the decoder are returned as-is.
func DecodeElements(r io.Reader, name string, fn func(attrs []xml.Attr)) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == name {
			fn(se.Attr)
		}
	}
}

func decodeFile(path, name string, fn func(attrs []xml.Attr)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := DecodeElements(f, name, fn); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// attr returns the value of the named attribute and whether it was present.
func attr(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// typeAttr returns the first non-empty of "type" and "vType".
func typeAttr(attrs []xml.Attr) string {
	if v, _ := attr(attrs, "type"); v != "" {
		return v
	}
	v, _ := attr(attrs, "vType")
	return v
}

// NormalizeType lowercases a vehicle type label and drops any "@" suffix,
// so "Passenger@flow3" and "passenger" group together.
func NormalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	base, _, _ := strings.Cut(t, "@")
	return base
}
