package models

import "time"

// Backup is the catalogue entry of one stored snapshot.
type Backup struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	Key      string `gorm:"size:500;not null" json:"-"`
	Format   string `gorm:"size:16;not null" json:"format"`
	Size     int64  `json:"size"`
	Checksum string `gorm:"size:64" json:"checksum"`

	Clients      int `json:"clients"`
	Quotes       int `json:"quotes"`
	Calculations int `json:"calculations"`
}

// GetUserID implements Ownable.
func (b *Backup) GetUserID() uint {
	return b.UserID
}
