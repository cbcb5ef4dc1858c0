package header

import "strings"

// hopByHop are the fields that only pertain to a single transport hop
// and must not be stored or replayed.
var hopByHop = []string{
	"connection",
	"keep-alive",
	"proxy-authenticate",
	"proxy-authorization",
	"te",
	"trailers",
	"transfer-encoding",
	"upgrade",
}

// EndToEnd returns the end-to-end subset of the given fields.
//
// The Connection field and the fields whose names are listed in it are removed,
// along with the fixed hop-by-hop fields. Each surviving name is emitted once,
// at the position of its first occurrence, with the combined value returned by Fields.Value.
func EndToEnd(f Fields) Fields {
	excluded := make(map[string]struct{})
	if connection, ok := f.Value("Connection"); ok {
		for _, name := range LowerList(connection) {
			excluded[name] = struct{}{}
		}
	}

	out := make(Fields, 0, len(f))
	for _, field := range f {
		name := strings.ToLower(field.Name)
		if _, skip := excluded[name]; skip || IsHopByHop(name) {
			continue
		}
		// mark as emitted
		excluded[name] = struct{}{}
		value, _ := f.Value(field.Name)
		out = append(out, Field{Name: field.Name, Value: value})
	}
	return out
}

// IsHopByHop reports whether name is one of the fixed hop-by-hop fields.
func IsHopByHop(name string) bool {
	name = strings.ToLower(name)
	for _, h := range hopByHop {
		if h == name {
			return true
		}
	}
	return false
}
