package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/validation"
)

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// ClientInput is the editable part of a client.
type ClientInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	NIF        string `json:"nif"`
	STAT       string `json:"stat"`
	Notes      string `json:"notes"`
}

func (in ClientInput) validate() error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLength("name", in.Name, 255, v)
	validation.Email("email", strings.TrimSpace(in.Email), v)
	validation.MaxLength("phone", in.Phone, 50, v)
	validation.MaxLength("nif", in.NIF, 20, v)
	validation.MaxLength("stat", in.STAT, 30, v)
	return invalid(v)
}

func (in ClientInput) apply(c *models.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = in.Phone
	c.Company = in.Company
	c.Address = in.Address
	c.City = in.City
	c.PostalCode = in.PostalCode
	c.Country = in.Country
	c.NIF = in.NIF
	c.STAT = in.STAT
	c.Notes = in.Notes
}

// ClientFilter narrows List by a case-insensitive search on name, company or email.
type ClientFilter struct {
	Search string
	Page
}

func (s *ClientService) List(ctx context.Context, userID uint, f ClientFilter) ([]models.Client, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Client{}).Where("user_id = ?", userID)
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var clients []models.Client
	if err := f.Page.apply(q).Order("name ASC, id ASC").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (s *ClientService) Get(ctx context.Context, userID, id uint) (*models.Client, error) {
	var c models.Client
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&c, id).Error; err != nil {
		return nil, notFound(err, "client")
	}
	return &c, nil
}

func (s *ClientService) Create(ctx context.Context, userID uint, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := models.Client{UserID: userID}
	in.apply(&c)
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) Update(ctx context.Context, userID, id uint, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a client that no quote refers to.
func (s *ClientService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.Where("user_id = ?", userID).First(&c, id).Error; err != nil {
			return notFound(err, "client")
		}
		var quotes int64
		if err := tx.Model(&models.Quote{}).Where("client_id = ?", id).Count(&quotes).Error; err != nil {
			return err
		}
		if quotes > 0 {
			return fmt.Errorf("client has %d quote(s): %w", quotes, ErrClientInUse)
		}
		return tx.Delete(&c).Error
	})
}
