package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// requiredColumns lists, per entity-store table, the columns the
// reconciliation repositories query. Startup verifies them so a half-run
// migration fails fast instead of surfacing as merge errors mid-batch.
var requiredColumns = map[string][]string{
	"entities": {
		"internal_id", "kind", "name", "status",
		"canonical_type", "canonical_value",
	},
	"entity_identifiers": {
		"entity_internal_id", "id_type", "id_value", "source", "is_primary",
	},
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	if db.Dialector.Name() == "sqlite" {
		// SQLite uses PRAGMA table_info
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			columns = append(columns, ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
			})
		}
		return columns, nil
	}

	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// VerifySchema checks that every table the entity store depends on exists
// and carries the expected columns. It returns one error naming every
// missing column so operators can fix the schema in one pass.
func VerifySchema(db *gorm.DB) error {
	var missing []string
	for table, required := range requiredColumns {
		columns, err := GetTableColumns(db, table)
		if err != nil {
			return err
		}
		present := make(map[string]bool, len(columns))
		for _, col := range columns {
			present[col.Field] = true
		}
		for _, name := range required {
			if !present[name] {
				missing = append(missing, table+"."+name)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("entity store schema incomplete, missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
