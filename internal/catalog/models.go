package catalog

import (
	"time"

	"gorm.io/gorm"

	"github.com/tair/tip-favorites/internal/favorite/domain"
)

// Tip is the stored tip row. Tips are owned by the tips service; this
// package only reads them.
type Tip struct {
	ID          string `gorm:"primaryKey;size:127"`
	Title       string `gorm:"not null"`
	Description string
	CategoryID  string   `gorm:"size:127"`
	Tags        []string `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
}

// TableName specifies the default table name
func (Tip) TableName() string {
	return "tips"
}

func (t Tip) toDomain() domain.Tip {
	return domain.Tip{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CategoryID:  t.CategoryID,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
	}
}

// Category is the stored category row
type Category struct {
	ID        string `gorm:"primaryKey;size:127"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}

// TableName specifies the default table name
func (Category) TableName() string {
	return "categories"
}

// User is the stored user row, reduced to what favorites need
type User struct {
	ID        string `gorm:"primaryKey;size:127"`
	Username  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}

// TableName specifies the default table name
func (User) TableName() string {
	return "users"
}
