package models

type LoginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SendMessageRequestBody struct {
	RecipientID uint   `json:"recipient_id"`
	Body        string `json:"body"`
}
