package core

import (
	"sort"
	"strings"
)

// Kind is the declared target type of a column.
//
// The zero value is KindText, so a Column with no kind set converts as text.
type Kind int

const (
	KindText Kind = iota
	KindUUID
	KindBytes
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindDateTime
)

// kindNames holds the canonical name of every supported kind, indexed by Kind.
var kindNames = [...]string{
	KindText:     "text",
	KindUUID:     "uuid",
	KindBytes:    "bytes",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindDecimal:  "decimal",
	KindDateTime: "datetime",
}

// kindAliases maps every accepted declaration name (lowercase) to its kind.
var kindAliases = map[string]Kind{
	"text":      KindText,
	"string":    KindText,
	"str":       KindText,
	"uuid":      KindUUID,
	"guid":      KindUUID,
	"bytes":     KindBytes,
	"byte[]":    KindBytes,
	"binary":    KindBytes,
	"blob":      KindBytes,
	"base64":    KindBytes,
	"int32":     KindInt32,
	"int":       KindInt32,
	"integer":   KindInt32,
	"int4":      KindInt32,
	"int64":     KindInt64,
	"long":      KindInt64,
	"bigint":    KindInt64,
	"int8":      KindInt64,
	"float32":   KindFloat32,
	"float":     KindFloat32,
	"single":    KindFloat32,
	"real":      KindFloat32,
	"float4":    KindFloat32,
	"float64":   KindFloat64,
	"double":    KindFloat64,
	"float8":    KindFloat64,
	"decimal":   KindDecimal,
	"numeric":   KindDecimal,
	"money":     KindDecimal,
	"datetime":  KindDateTime,
	"date":      KindDateTime,
	"timestamp": KindDateTime,
	"time":      KindDateTime,
}

// Supported reports whether k is one of the declared kinds.
// Unsupported kinds still convert, using the text rule.
func (k Kind) Supported() bool {
	return k >= KindText && int(k) < len(kindNames)
}

func (k Kind) String() string {
	if !k.Supported() {
		return "unsupported"
	}
	return kindNames[k]
}

// ParseKind resolves a declaration name such as "guid" or "Int64" to a Kind.
// Unknown names resolve to KindText with ok=false.
func ParseKind(name string) (kind Kind, ok bool) {
	kind, ok = kindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return KindText, false
	}
	return kind, true
}

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Aliases returns the declaration names accepted for k, sorted.
func (k Kind) Aliases() []string {
	var names []string
	for name, kind := range kindAliases {
		if kind == k {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
