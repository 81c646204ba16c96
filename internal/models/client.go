package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Client is a customer quotes are addressed to.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Company string `gorm:"size:255" json:"company,omitempty"`

	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	NIF   string `gorm:"size:20" json:"nif,omitempty"`
	STAT  string `gorm:"size:30" json:"stat,omitempty"`
	Notes string `gorm:"type:text" json:"notes,omitempty"`

	Quotes []Quote `gorm:"foreignKey:ClientID" json:"quotes,omitempty"`
}

// GetUserID implements Ownable.
func (c *Client) GetUserID() uint {
	return c.UserID
}

// DisplayName prefers the company name when present.
func (c *Client) DisplayName() string {
	if c.Company != "" {
		return c.Company
	}
	return c.Name
}

// FullAddress returns the formatted full address.
func (c *Client) FullAddress() string {
	return formatAddress(c.Address, c.PostalCode, c.City, c.Country)
}

func formatAddress(street, postalCode, city, country string) string {
	var lines []string
	if street != "" {
		lines = append(lines, street)
	}
	if locality := strings.TrimSpace(postalCode + " " + city); locality != "" {
		lines = append(lines, locality)
	}
	if country != "" {
		lines = append(lines, country)
	}
	return strings.Join(lines, "\n")
}
