package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopstack/internal/database/models"
)

// NextSequence atomically increments and returns the named counter,
// creating it at 1 on first use. The increment happens in a single upsert
// so concurrent callers never observe the same value.
func NextSequence(db *gorm.DB, seqType string) (int64, error) {
	counter := models.SequenceCounter{Type: seqType, CurrentCount: 1}
	err := db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "type"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"current_count": gorm.Expr("sequence_counters.current_count + 1"),
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "current_count"}}},
	).Create(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter.CurrentCount, nil
}
