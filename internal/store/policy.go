package store

import (
	"context"

	"github.com/mepla/Enchilada/internal/models"

	"gorm.io/gorm"
)

// GetScopeDefinition loads a scope definition with its patterns in order.
func (s *Store) GetScopeDefinition(ctx context.Context, name string) (*models.ScopeDefinition, error) {
	var def models.ScopeDefinition
	err := s.db.WithContext(ctx).
		Preload("Patterns", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("name = ?", name).
		First(&def).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &def, nil
}

// UpsertScopeDefinition replaces the definition and all its patterns.
func (s *Store) UpsertScopeDefinition(ctx context.Context, def *models.ScopeDefinition) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scope_name = ?", def.Name).Delete(&models.ScopePattern{}).Error; err != nil {
			return err
		}

		patterns := def.Patterns
		def.Patterns = nil
		if err := tx.Save(def).Error; err != nil {
			return err
		}

		for i := range patterns {
			patterns[i].ID = 0
			patterns[i].ScopeName = def.Name
		}
		if len(patterns) > 0 {
			if err := tx.Create(&patterns).Error; err != nil {
				return err
			}
		}
		def.Patterns = patterns
		return nil
	})
}
