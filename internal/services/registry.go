package services

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/backup"
	"github.com/diewo77/go-quotes/internal/pricing"
)

// Registry is the full set of services sharing one database and policy.
// Backups is nil until EnableBackups is called.
type Registry struct {
	Users        *UserService
	Clients      *ClientService
	Quotes       *QuoteService
	Calculations *CalculationService
	Rates        *RateService
	Analytics    *AnalyticsService
	Company      *CompanyService
	Exports      *ExportService
	Backups      *BackupService

	db  *gorm.DB
	log zerolog.Logger
}

func NewRegistry(db *gorm.DB, policy pricing.Policy, defaults pricing.RateTable, log zerolog.Logger) *Registry {
	r := &Registry{db: db, log: log}
	r.Users = NewUserService(db)
	r.Clients = NewClientService(db)
	r.Rates = NewRateService(db, defaults)
	r.Quotes = NewQuoteService(db, r.Rates, policy, log)
	r.Calculations = NewCalculationService(db, r.Rates, r.Quotes, policy)
	r.Analytics = NewAnalyticsService(db, r.Quotes, r.Rates, policy)
	r.Company = NewCompanyService(db)
	r.Exports = NewExportService(r.Quotes, r.Company, r.Rates, policy)
	return r
}

// EnableBackups wires the backup service to store.
func (r *Registry) EnableBackups(store backup.Store, format backup.Format, keep int) {
	r.Backups = NewBackupService(r.db, store, format, keep, r.log)
}
