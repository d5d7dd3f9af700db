package models

import (
	"sort"
	"time"
)

// SelfPlaceholder is replaced with the caller's uid in scope path templates.
const SelfPlaceholder = "{self}"

// ScopeDefinition maps a scope name to an ordered list of path-pattern
// templates such as "get /users/{self}".
type ScopeDefinition struct {
	Name        string         `gorm:"primaryKey"`
	Description string         `gorm:"type:text"`
	Patterns    []ScopePattern `gorm:"foreignKey:ScopeName;references:Name;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the table name used by ScopeDefinition to `scope_definitions`
func (ScopeDefinition) TableName() string {
	return "scope_definitions"
}

// ScopePattern is one template of a ScopeDefinition.
type ScopePattern struct {
	ID        uint   `gorm:"primaryKey"`
	ScopeName string `gorm:"not null;index"`
	Position  int    `gorm:"not null"`
	Template  string `gorm:"not null"`
}

// TableName overrides the table name used by ScopePattern to `scope_patterns`
func (ScopePattern) TableName() string {
	return "scope_patterns"
}

// Templates returns the templates in declaration order.
func (d *ScopeDefinition) Templates() []string {
	patterns := make([]ScopePattern, len(d.Patterns))
	copy(patterns, d.Patterns)
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Position < patterns[j].Position
	})

	templates := make([]string, 0, len(patterns))
	for _, p := range patterns {
		templates = append(templates, p.Template)
	}
	return templates
}

// NewScopeDefinition builds a definition with positions assigned in order.
func NewScopeDefinition(name, description string, templates ...string) *ScopeDefinition {
	def := &ScopeDefinition{Name: name, Description: description}
	for i, tpl := range templates {
		def.Patterns = append(def.Patterns, ScopePattern{
			ScopeName: name,
			Position:  i,
			Template:  tpl,
		})
	}
	return def
}
