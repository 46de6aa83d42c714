package repository

import "gorm.io/gorm"

// forUpdate adds a row-level lock on postgres. sqlite (used by tests) has no
// row locks and runs single-writer, so the clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Set("gorm:query_option", "FOR UPDATE")
	}
	return tx
}
