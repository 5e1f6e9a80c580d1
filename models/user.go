package models

import "time"

type Role string

const (
	AdminRole Role = "ADMIN"
	UserRole  Role = "USER"
)

type UserStatus string

const (
	UserActive  UserStatus = "ACTIVE"
	UserBlocked UserStatus = "BLOCKED"
)

type User struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FirstName       string     `json:"firstName" gorm:"column:first_name"`
	LastName        string     `json:"lastName" gorm:"column:last_name"`
	Email           string     `json:"email" gorm:"uniqueIndex"`
	PhoneNumber     string     `json:"phoneNumber" gorm:"column:phone_number"`
	PasswordHash    string     `json:"-" gorm:"column:password_hash"`
	Role            Role       `json:"role" gorm:"default:'USER'"`
	Status          UserStatus `json:"status" gorm:"default:'ACTIVE'"`
	IsPhoneVerified bool       `json:"isPhoneVerified" gorm:"column:is_phone_verified;default:false"`
	Points          int        `json:"points" gorm:"default:0"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type UserRegister struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" binding:"required,min=8"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (User) TableName() string {
	return "users"
}
