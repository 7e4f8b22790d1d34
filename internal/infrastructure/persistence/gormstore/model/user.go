package model

import "github.com/google/uuid"

type User struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email          string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	HashedPassword string    `gorm:"column:hashed_password;type:text;not null"`
	IsActive       bool      `gorm:"column:is_active;not null"`
}

func (User) TableName() string {
	return "users"
}
