package db

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/models"
)

const (
	DemoEmail    = "demo@example.com"
	demoPassword = "demo1234"
)

// Seed creates a demo account with company settings and two clients.
// It is idempotent.
func Seed(gdb *gorm.DB, log zerolog.Logger) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", DemoEmail).First(&user).Error
		if err == nil {
			log.Debug().Uint("user_id", user.ID).Msg("Demo user already present")
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		user = models.User{Email: DemoEmail, Name: "Demo", Password: string(hash)}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		settings := models.CompanySettings{
			UserID:               user.ID,
			Name:                 "Demo Import Export",
			City:                 "Antananarivo",
			Country:              "Madagascar",
			DefaultMarginPercent: decimal.NewFromInt(20),
			QuoteValidityDays:    30,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}
		clients := []models.Client{
			{UserID: user.ID, Name: "Rakoto Jean", Company: "Quincaillerie Analakely", City: "Antananarivo", Country: "Madagascar"},
			{UserID: user.ID, Name: "Rasoa Hanta", City: "Toamasina", Country: "Madagascar"},
		}
		if err := tx.Create(&clients).Error; err != nil {
			return err
		}
		log.Info().Str("email", DemoEmail).Msg("Seeded demo account")
		return nil
	})
}
