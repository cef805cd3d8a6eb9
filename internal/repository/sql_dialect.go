package repository

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// dialectOf 获取数据库方言名称，未知时按 sqlite 处理
func dialectOf(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	if name := strings.ToLower(strings.TrimSpace(db.Dialector.Name())); name != "" {
		return name
	}
	return "sqlite"
}

// searchClause 构建多列关键字模糊匹配条件。
// 关键字中的通配符按字面匹配；postgres 使用 ILIKE，其余方言统一转小写比较。
func searchClause(dialect, term string, columns []string) (string, []interface{}) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", nil
	}
	postgres := dialect == "postgres" || dialect == "postgresql"
	if !postgres {
		term = strings.ToLower(term)
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"

	var parts []string
	var args []interface{}
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		if postgres {
			parts = append(parts, column+` ILIKE ? ESCAPE '\'`)
		} else {
			parts = append(parts, "LOWER("+column+`) LIKE ? ESCAPE '\'`)
		}
		args = append(args, pattern)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
