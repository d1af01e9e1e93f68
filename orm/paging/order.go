package paging

import (
	"regexp"
	"strings"

	"github.com/startdusk/dbrepo/orm/internal/errs"
)

const injectionPattern = `(?i)(?:')|(?:--)|(/\*(?:.|[\n\r])*?\*/)|(\b(select|update|union|and|or|delete|insert|trancate|char|into|substr|ascii|declare|exec|count|master|into|drop|execute)\b)`

var (
	injectionRegexp = regexp.MustCompile(injectionPattern)

	// 标识符可以带 [] `` "" 三种引号, 也可以用 . 连接, 最后跟一个可选的排序方向
	identSeg      = "(?:[a-zA-Z_][a-zA-Z0-9_$]*|\\[[a-zA-Z0-9_ $]+\\]|`[a-zA-Z0-9_ $]+`|\"[a-zA-Z0-9_ $]+\")"
	orderItemExpr = regexp.MustCompile(`(?i)^(` + identSeg + `(?:\.` + identSeg + `)*)(?:\s+(ASC|DESC))?$`)

	// statementWords 构成语句结构的关键字, 不能作为没有引号的排序字段.
	// count, char 这类函数名是合法的列名, 不在这里面
	statementWords = map[string]struct{}{
		"select": {}, "union": {}, "insert": {}, "update": {}, "delete": {},
		"drop": {}, "truncate": {}, "exec": {}, "execute": {}, "declare": {},
		"into": {}, "and": {}, "or": {},
	}
)

// IsSQLInjection 字符串里面有没有注释, 单引号或者危险的关键字
func IsSQLInjection(s string) bool {
	return s != "" && injectionRegexp.MatchString(s)
}

// StripSQLInjection 删掉 IsSQLInjection 能识别的片段
func StripSQLInjection(s string) string {
	if s == "" {
		return s
	}
	return injectionRegexp.ReplaceAllString(s, "")
}

// OrderClause 把调用方给的排序字段变成 ORDER BY 子句.
// 每一项都必须是合法的标识符, 没有写方向的项使用 asc 决定的方向.
// 没有引号的标识符不能是 select, union, drop 这种语句关键字, 这样的列名需要加上引号;
// count, char 这种同名的函数可以直接使用.
// field 为空的时候返回空字符串
func OrderClause(field string, asc bool) (string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", nil
	}
	dir := "ASC"
	if !asc {
		dir = "DESC"
	}
	items := strings.Split(field, ",")
	res := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		m := orderItemExpr.FindStringSubmatch(item)
		if m == nil {
			return "", errs.NewErrInvalidOrderClause(field)
		}
		for _, seg := range strings.Split(m[1], ".") {
			if seg[0] == '[' || seg[0] == '`' || seg[0] == '"' {
				continue
			}
			if _, ok := statementWords[strings.ToLower(seg)]; ok {
				return "", errs.NewErrInvalidOrderClause(field)
			}
		}
		itemDir := dir
		if m[2] != "" {
			itemDir = strings.ToUpper(m[2])
		}
		res = append(res, m[1]+" "+itemDir)
	}
	return "ORDER BY " + strings.Join(res, ", "), nil
}
