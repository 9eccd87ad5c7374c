package auth

import "tutormatch_backend/internal/models"

// Permission is a capability checked at route level.
type Permission string

const (
	PermTutorRead    Permission = "tutor:read"
	PermTutorManage  Permission = "tutor:manage"
	PermTutorExport  Permission = "tutor:export"
	PermProfileWrite Permission = "profile:write:self"
	PermFavorite     Permission = "favorite:write:self"
	PermBooking      Permission = "booking:write:self"
	PermProjectApply Permission = "project:apply:self"
	PermMatch        Permission = "match:use"
)

var userPermissions = []Permission{
	PermTutorRead,
	PermProfileWrite,
	PermFavorite,
	PermBooking,
	PermProjectApply,
	PermMatch,
}

// rolePermissions is immutable after init; admin capability comes from the
// role stored on the user record, not from a mutable allow-list.
var rolePermissions = map[models.UserRole][]Permission{
	models.RoleUser:  userPermissions,
	models.RoleAdmin: append(append([]Permission{}, userPermissions...), PermTutorManage, PermTutorExport),
}

func HasPermission(role models.UserRole, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

func CanPerformAction(claims *Claims, perm Permission) bool {
	if claims == nil {
		return false
	}
	return HasPermission(claims.Role, perm)
}

func IsAdmin(claims *Claims) bool {
	return claims != nil && claims.Role == models.RoleAdmin
}
