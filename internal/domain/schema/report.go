package schema

import (
	"fmt"
	"strings"
)

// Report renders table metadata as a fixed-width text report:
//
//	Database Name        Tables                         Columns
//	--------------------------------------------------------------
//	employees            salaries                       emp_no, salary, from_date
//	                                                    Relationships: emp_no -> employees.emp_no
func Report(database string, tables []Table) string {
	if len(tables) == 0 {
		return fmt.Sprintf("No metadata found for database: %s", database)
	}

	lines := []string{
		fmt.Sprintf("%-20s %-30s %-60s", "Database Name", "Tables", "Columns"),
		strings.Repeat("-", 110),
	}

	for _, t := range tables {
		columns := strings.Join(t.Columns, ", ")

		relationships := ""
		if len(t.ForeignKeys) > 0 {
			refs := make([]string, 0, len(t.ForeignKeys))
			for _, fk := range t.ForeignKeys {
				refs = append(refs, fmt.Sprintf("%s -> %s.%s", fk.Column, fk.RefTable, fk.RefColumn))
			}
			relationships = "\n" + strings.Repeat(" ", 51) + "Relationships: " + strings.Join(refs, ", ")
		}

		lines = append(lines, fmt.Sprintf("%-20s %-30s %-60s%s", database, t.Name, columns, relationships))
	}

	return strings.Join(lines, "\n")
}
