package dto

type UpdateUserRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=80"`
}
