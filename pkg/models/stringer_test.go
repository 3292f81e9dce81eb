package models

import "testing"

func TestStringerMethods(t *testing.T) {
	t.Run("IssueType", func(t *testing.T) {
		if IssueRuntimeRisk.String() != "runtime-risk" {
			t.Errorf("IssueType.String() = %q, want %q", IssueRuntimeRisk.String(), "runtime-risk")
		}
	})

	t.Run("Severity", func(t *testing.T) {
		if SeverityWarning.String() != "warning" {
			t.Errorf("Severity.String() = %q, want %q", SeverityWarning.String(), "warning")
		}
	})

	t.Run("Category", func(t *testing.T) {
		if CategoryDuplicateBlock.String() != "duplicate-block" {
			t.Errorf("Category.String() = %q, want %q", CategoryDuplicateBlock.String(), "duplicate-block")
		}
	})
}
