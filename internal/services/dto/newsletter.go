package dto

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"required,min=1,max=80"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}
