package models

import "time"

type User struct {
	Record
	FirstName          string `gorm:"size:50;not null;index" json:"first_name"`
	LastName           string `gorm:"size:50;not null;index" json:"last_name"`
	MiddleName         string `gorm:"size:50" json:"middle_name,omitempty"`
	Email              string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone              string `gorm:"size:50;uniqueIndex;not null" json:"phone"`
	PhoneCountryCode   string `gorm:"size:10;default:'234'" json:"phone_country_code"`
	Gender             string `gorm:"size:32" json:"gender"`
	Status             string `gorm:"size:32;index;default:'pending'" json:"status"`
	IsSuperAdmin       bool   `gorm:"default:false" json:"is_super_admin"`
	IsAdmin            bool   `gorm:"default:false" json:"is_admin"`
	RequireNewPassword bool   `gorm:"default:true" json:"require_new_password"`
	CreatedBy          string `gorm:"size:36" json:"created_by,omitempty"`
	UpdatedBy          string `gorm:"size:36" json:"updated_by,omitempty"`
	DeletedBy          string `gorm:"size:36" json:"deleted_by,omitempty"`
}

func (u *User) FullName() string {
	if u.MiddleName != "" {
		return u.FirstName + " " + u.MiddleName + " " + u.LastName
	}
	return u.FirstName + " " + u.LastName
}

type LoginSession struct {
	Record
	UserID          string    `gorm:"size:36;not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status          int       `gorm:"not null;default:0;index" json:"status"`
	ValidityEndDate time.Time `json:"validity_end_date"`
	LoggedOut       bool      `gorm:"default:false" json:"logged_out"`
	Expired         bool      `gorm:"default:false" json:"expired"`
	OS              string    `gorm:"size:64" json:"os,omitempty"`
	Version         string    `gorm:"size:32" json:"version,omitempty"`
	Device          string    `gorm:"size:64" json:"device,omitempty"`
}

type UserPassword struct {
	Record
	Password string `gorm:"not null" json:"-"`
	Email    string `gorm:"size:100;index;not null" json:"email"`
	UserID   string `gorm:"size:36;not null;index" json:"user_id"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status   string `gorm:"size:32;default:'active'" json:"status"`
}

type UserPrivilege struct {
	Record
	UserID    string `gorm:"size:36;not null;index" json:"user_id"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string `gorm:"size:32;not null" json:"role"`
	Status    string `gorm:"size:32;index;default:'active'" json:"status"`
	CreatedBy string `gorm:"size:36" json:"created_by,omitempty"`
	UpdatedBy string `gorm:"size:36" json:"updated_by,omitempty"`
}

type OTP struct {
	Record
	Code            string    `gorm:"size:16;not null" json:"-"`
	Type            string    `gorm:"size:32;not null" json:"type"`
	UserID          string    `gorm:"size:36;not null;index" json:"user_id"`
	Status          string    `gorm:"size:32;default:'active'" json:"status"`
	ValidityEndDate time.Time `json:"validity_end_date"`
}
