package dto

type CreateSellerRequestRequest struct {
	BusinessName  string   `json:"businessName" validate:"required,min=3,max=255"`
	BusinessTypes []string `json:"businessTypes" validate:"required,min=1,dive,required"`
	TINNumber     string   `json:"tinNumber" validate:"required,len=9,numeric"`

	Region   string `json:"region" validate:"required,min=2,max=100"`
	District string `json:"district" validate:"required,min=2,max=100"`
	Street   string `json:"street" validate:"required,min=2,max=255"`
	Landmark string `json:"landmark" validate:"omitempty"`

	Facebook  string `json:"facebook" validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"omitempty,url"`
	TikTok    string `json:"tiktok" validate:"omitempty,url"`
	WhatsApp  string `json:"whatsapp" validate:"omitempty,url"`

	Description  string   `json:"description" validate:"required,min=10"`
	DocumentKeys []string `json:"documentKeys" validate:"required,min=1,dive,required"`
	Agree        bool     `json:"agree" validate:"eq=true"`
}

// ReviewRequest is the admin decision payload. Reason is required for
// reject and request_info.
type ReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=start_review approve reject request_info"`
	Reason string `json:"reason"`
}
