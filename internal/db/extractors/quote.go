package extractors

import (
	"strconv"
	"strings"
)

// doubleQuoted quotes identifiers the ANSI way: "name".
type doubleQuoted struct{}

func (doubleQuoted) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// backtickQuoted quotes identifiers the MySQL way: `name`.
type backtickQuoted struct{}

func (backtickQuoted) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// bracketQuoted quotes identifiers the SQL Server way: [name].
type bracketQuoted struct{}

func (bracketQuoted) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

// numbered writes placeholders as prefix followed by the 1-based position.
func numbered(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}
