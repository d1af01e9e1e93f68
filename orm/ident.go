package orm

import "regexp"

var identRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*(\.[a-zA-Z_][a-zA-Z0-9_$]*)*$`)

// isIdentifier 存储过程名之类直接拼接到 SQL 里面的名字, 可以用 . 带上 schema
func isIdentifier(name string) bool {
	return identRegexp.MatchString(name)
}
