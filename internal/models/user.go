package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string    `json:"-" gorm:"column:hashed_password;not null"`
	FirstName      string    `json:"firstName" gorm:"column:first_name"`
	LastName       string    `json:"lastName" gorm:"column:last_name"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt      time.Time `json:"createdAt"`

	Locations []Location `gorm:"foreignKey:UserID" json:"-"`
	Favorites []Favorite `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Claims for bearer token authentication
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest mirrors the signup form fields.
type SignupRequest struct {
	Username  string `json:"username" validate:"required,max=30"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Email     string `json:"email" validate:"required,email"`
}
