package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	BaseModel
	OpenID        *string    `gorm:"type:varchar(64);uniqueIndex" json:"openid,omitempty"`
	UnionID       string     `gorm:"type:varchar(64)" json:"unionid,omitempty"`
	Nickname      string     `gorm:"type:varchar(100)" json:"nickname"`
	Avatar        string     `gorm:"type:varchar(500)" json:"avatar"`
	School        string     `gorm:"type:varchar(200)" json:"school"`
	Major         string     `gorm:"type:varchar(200)" json:"major"`
	Grade         string     `gorm:"type:varchar(50)" json:"grade"`
	VIPStatus     bool       `gorm:"default:false" json:"vip_status"`
	VIPExpireDate *time.Time `json:"vip_expire_date,omitempty"`
	Role          UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Email         *string    `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	PasswordHash  string     `gorm:"type:varchar(255)" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// VIPState reports whether the user holds VIP and, if so, whether it lapsed before now.
func (u *User) VIPState(now time.Time) (isVIP bool, expired bool) {
	if !u.VIPStatus {
		return false, false
	}
	if u.VIPExpireDate != nil && u.VIPExpireDate.Before(now) {
		return true, true
	}
	return true, false
}
