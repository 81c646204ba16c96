// Package models holds the gorm entities persisted by the application.
package models

// All lists every entity, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&CompanySettings{},
		&Client{},
		&Quote{},
		&QuoteItem{},
		&Calculation{},
		&CalculationItem{},
		&ExchangeRate{},
		&Backup{},
	}
}

// Ownable is implemented by every user-scoped entity.
type Ownable interface {
	GetUserID() uint
}
