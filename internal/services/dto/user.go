package dto

// UpdateProfileRequest only touches non-nil fields.
type UpdateProfileRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,min=1,max=50"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=500"`
	School   *string `json:"school" validate:"omitempty,max=100"`
	Major    *string `json:"major" validate:"omitempty,max=100"`
	Grade    *string `json:"grade" validate:"omitempty,max=20"`
}

type UpdateProfileResponse struct {
	User          *UserResponse `json:"user"`
	UpdatedFields []string      `json:"updated_fields"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}
