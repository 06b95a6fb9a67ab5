package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SellerRequestStatus is the review state machine over a seller request.
// Transitions are one-directional except MORE_INFO_NEEDED, which loops back
// to PENDING on resubmission.
type SellerRequestStatus string

const (
	StatusPending        SellerRequestStatus = "PENDING"
	StatusUnderReview    SellerRequestStatus = "UNDER_REVIEW"
	StatusApproved       SellerRequestStatus = "APPROVED"
	StatusRejected       SellerRequestStatus = "REJECTED"
	StatusMoreInfoNeeded SellerRequestStatus = "MORE_INFO_NEEDED"
)

// Decidable reports whether a request in this status may still receive a
// review decision.
func (s SellerRequestStatus) Decidable() bool {
	return s == StatusPending || s == StatusUnderReview
}

// SellerRequest is a user's application to become a seller. The TIN is
// unique across all requests; the document rows are owned by the request and
// cascade-deleted with it.
type SellerRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmittedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"submitted_by"`

	BusinessName  string         `gorm:"size:255;not null" json:"business_name"`
	BusinessTypes datatypes.JSON `gorm:"type:jsonb;not null" json:"business_types"`
	TINNumber     string         `gorm:"size:20;not null;uniqueIndex" json:"tin_number"`

	Region   string `gorm:"size:100;not null" json:"region"`
	District string `gorm:"size:100;not null" json:"district"`
	Street   string `gorm:"size:255;not null" json:"street"`
	Landmark string `gorm:"type:text" json:"landmark,omitempty"`

	Facebook  string `gorm:"type:text" json:"facebook,omitempty"`
	Instagram string `gorm:"type:text" json:"instagram,omitempty"`
	TikTok    string `gorm:"type:text" json:"tiktok,omitempty"`
	WhatsApp  string `gorm:"type:text" json:"whatsapp,omitempty"`

	Description   string         `gorm:"type:text;not null" json:"description"`
	DocumentKeys  datatypes.JSON `gorm:"type:jsonb;not null" json:"document_keys"`
	AgreedToTerms bool           `gorm:"not null;default:false" json:"agreed_to_terms"`

	Status          SellerRequestStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	RejectionReason *string             `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID          `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Documents []SellerRequestDocument `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// File type and document category inferred from the storage key.
const (
	FileTypeImage = "image"
	FileTypePDF   = "pdf"
	FileTypeOther = "other"

	DocTypeBusinessLicense = "business_license"
	DocTypeTINCertificate  = "tin_certificate"
	DocTypeIdentification  = "identification"
	DocTypeOther           = "other"
)

// SellerRequestDocument references one uploaded file. Rows are created only
// as part of request creation or resubmission, inside the same transaction
// as the parent request.
type SellerRequestDocument struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"request_id"`
	FileKey      string         `gorm:"type:text;not null" json:"file_key"`
	FileType     string         `gorm:"size:10;not null" json:"file_type"`
	DocumentType string         `gorm:"size:30;not null" json:"document_type"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	UploadedAt   time.Time      `gorm:"not null" json:"uploaded_at"`
}
