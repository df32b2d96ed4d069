package repository

import (
	"context"

	"gorm.io/gorm"
)

// reorder assigns display_order = index to every id within scope. All ids are
// checked before anything is written, so a rejected request changes nothing.
func reorder(ctx context.Context, db *gorm.DB, model interface{}, scope func(*gorm.DB) *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []uint64
		if err := tx.Model(model).Scopes(scope).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return err
		}
		if missing := missingIDs(ids, found); len(missing) > 0 {
			return &ReorderError{Failed: missing}
		}

		for i, id := range ids {
			if err := tx.Model(model).Where("id = ?", id).Update("display_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func missingIDs(want, found []uint64) []uint64 {
	present := make(map[uint64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []uint64
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
			present[id] = struct{}{}
		}
	}
	return missing
}
