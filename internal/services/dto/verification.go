package dto

type SendPhoneCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
}

type ConfirmPhoneCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	CountryCode string `json:"countryCode" validate:"omitempty,len=2,alpha"`
}

type PhoneVerificationResponse struct {
	Status string `json:"status"`
}
