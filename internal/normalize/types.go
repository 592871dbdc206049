package normalize

import "strings"

// Canonical datatype vocabulary.
const (
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeText    = "TEXT"
	TypeBlob    = "BLOB"
	TypeBoolean = "BOOLEAN"
)

var typeFamilies = map[string]string{
	"int": TypeInteger, "integer": TypeInteger, "tinyint": TypeInteger, "smallint": TypeInteger,
	"mediumint": TypeInteger, "bigint": TypeInteger, "int2": TypeInteger, "int4": TypeInteger,
	"int8": TypeInteger, "serial": TypeInteger, "smallserial": TypeInteger, "bigserial": TypeInteger,
	"year": TypeInteger,

	"real": TypeReal, "float": TypeReal, "float4": TypeReal, "float8": TypeReal, "double": TypeReal,
	"decimal": TypeReal, "dec": TypeReal, "numeric": TypeReal, "fixed": TypeReal, "money": TypeReal,
	"number": TypeReal,

	"char": TypeText, "varchar": TypeText, "varchar2": TypeText, "nchar": TypeText, "nvarchar": TypeText,
	"character": TypeText, "text": TypeText, "tinytext": TypeText, "mediumtext": TypeText,
	"longtext": TypeText, "ntext": TypeText, "clob": TypeText, "string": TypeText, "uuid": TypeText,
	"json": TypeText, "jsonb": TypeText, "xml": TypeText, "enum": TypeText, "set": TypeText,
	"date": TypeText, "time": TypeText, "datetime": TypeText, "datetime2": TypeText,
	"timestamp": TypeText, "timestamptz": TypeText, "interval": TypeText,

	"blob": TypeBlob, "tinyblob": TypeBlob, "mediumblob": TypeBlob, "longblob": TypeBlob,
	"binary": TypeBlob, "varbinary": TypeBlob, "bytea": TypeBlob, "image": TypeBlob,

	"bool": TypeBoolean, "boolean": TypeBoolean, "bit": TypeBoolean,
}

// FoldType maps a vendor datatype onto INTEGER, REAL, TEXT, BLOB or BOOLEAN.
// Length and precision modifiers are dropped. Types outside the vocabulary
// are returned as their upper-cased base word.
func FoldType(t string) string {
	base := strings.TrimSpace(t)
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		return ""
	}
	if folded, ok := typeFamilies[strings.ToLower(base)]; ok {
		return folded
	}
	return strings.ToUpper(base)
}
