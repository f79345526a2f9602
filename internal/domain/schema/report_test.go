package schema

import (
	"strings"
	"testing"
)

func TestReport_Empty(t *testing.T) {
	t.Parallel()

	got := Report("employees", nil)
	if got != "No metadata found for database: employees" {
		t.Errorf("unexpected report: %q", got)
	}
}

func TestReport_Header(t *testing.T) {
	t.Parallel()

	got := Report("employees", []Table{{Name: "salaries", Columns: []string{"emp_no", "salary"}}})

	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "Database Name") {
		t.Errorf("missing header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "---") {
		t.Errorf("missing separator: %q", lines[1])
	}
	if !strings.Contains(lines[2], "salaries") || !strings.Contains(lines[2], "emp_no, salary") {
		t.Errorf("missing table row content: %q", lines[2])
	}
}

func TestReport_Relationships(t *testing.T) {
	t.Parallel()

	got := Report("employees", []Table{{
		Name:    "salaries",
		Columns: []string{"emp_no", "salary"},
		ForeignKeys: []ForeignKey{
			{Column: "emp_no", RefTable: "employees", RefColumn: "emp_no"},
		},
	}})

	if !strings.Contains(got, "Relationships: emp_no -> employees.emp_no") {
		t.Errorf("missing relationship line:\n%s", got)
	}
}

func TestReport_MultipleTables(t *testing.T) {
	t.Parallel()

	got := Report("world", []Table{
		{Name: "city", Columns: []string{"id", "name"}},
		{Name: "country", Columns: []string{"code", "name"}},
	})

	if !strings.Contains(got, "city") || !strings.Contains(got, "country") {
		t.Errorf("missing tables in report:\n%s", got)
	}
}
