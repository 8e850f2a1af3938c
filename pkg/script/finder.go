package script

import (
	"bufio"
	"bytes"
	"strings"
)

// Marker is the enabling annotation placed on the first line of every
// hybrid script unit. It is a comment to Starlark.
const Marker = "# @hybrid.script"

// Extension is the canonical file extension for hybrid script units.
const Extension = ".star"

// Wrap prepends the enabling marker line to src. Source that already
// starts with the marker is returned unchanged.
func Wrap(src string) string {
	if HasMarker([]byte(src)) {
		return src
	}
	return Marker + "\n" + src
}

// HasMarker reports whether the first non-blank line of src is the marker.
func HasMarker(src []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return line == Marker
	}
	return false
}

// WithExtension appends Extension to path unless it already ends with it.
func WithExtension(path string) string {
	if strings.HasSuffix(path, Extension) {
		return path
	}
	return path + Extension
}

// FindDefinition returns the single top-level function definition in f.
// Nested definitions are not considered.
func FindDefinition(f *File) (*FuncDef, error) {
	var defs []*FuncDef
	for _, stmt := range f.Stmts {
		if def, ok := stmt.(*FuncDef); ok {
			defs = append(defs, def)
		}
	}

	if len(defs) != 1 {
		names := make([]string, len(defs))
		for i, def := range defs {
			names[i] = def.Name
		}
		return nil, &DefinitionCountError{
			File:  f.Name,
			Count: len(defs),
			Names: names,
		}
	}
	return defs[0], nil
}

// Find parses src and locates its entry-point definition.
func Find(filename string, src []byte) (string, *FuncDef, error) {
	f, err := Parse(filename, src)
	if err != nil {
		return "", nil, err
	}
	def, err := FindDefinition(f)
	if err != nil {
		return "", nil, err
	}
	return def.Name, def, nil
}
