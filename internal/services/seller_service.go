package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/dto"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTINTaken            = errors.New("a request with this TIN already exists")
	ErrNoDocuments         = errors.New("at least one document is required")
	ErrTermsNotAgreed      = errors.New("terms must be agreed")
	ErrRequestNotFound     = errors.New("seller request not found")
	ErrNotRequestOwner     = errors.New("request belongs to another user")
	ErrInvalidTransition   = errors.New("request status does not allow this transition")
	ErrReasonRequired      = errors.New("a reason is required for this decision")
	ErrUnknownReviewAction = errors.New("unknown review action")
)

// Review actions accepted by Review.
const (
	ReviewActionStart       = "start_review"
	ReviewActionApprove     = "approve"
	ReviewActionReject      = "reject"
	ReviewActionRequestInfo = "request_info"
)

type SellerService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewSellerService(db *gorm.DB, audit *AuditService) *SellerService {
	return &SellerService{db: db, audit: audit}
}

// inferFileType classifies an uploaded file by its storage key extension.
func inferFileType(fileKey string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileKey), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp":
		return models.FileTypeImage
	case "pdf":
		return models.FileTypePDF
	}
	return models.FileTypeOther
}

// inferDocumentType classifies a document by substring heuristics on the
// storage key. License wins over TIN, TIN over identification.
func inferDocumentType(fileKey string) string {
	key := strings.ToLower(fileKey)
	switch {
	case strings.Contains(key, "license"):
		return models.DocTypeBusinessLicense
	case strings.Contains(key, "tin"), strings.Contains(key, "tax"):
		return models.DocTypeTINCertificate
	case strings.Contains(key, "id"), strings.Contains(key, "identification"):
		return models.DocTypeIdentification
	}
	return models.DocTypeOther
}

func buildDocuments(requestID, uploadedBy uuid.UUID, documentKeys []string) ([]models.SellerRequestDocument, error) {
	docs := make([]models.SellerRequestDocument, 0, len(documentKeys))
	now := time.Now()
	for _, fileKey := range documentKeys {
		documentType := inferDocumentType(fileKey)
		meta, err := json.Marshal(map[string]any{
			"originalName": path.Base(fileKey),
			"uploadedBy":   uploadedBy.String(),
			"documentType": documentType,
			"size":         0,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document metadata: %w", err)
		}
		docs = append(docs, models.SellerRequestDocument{
			ID:           uuid.New(),
			RequestID:    requestID,
			FileKey:      fileKey,
			FileType:     inferFileType(fileKey),
			DocumentType: documentType,
			Metadata:     datatypes.JSON(meta),
			UploadedAt:   now,
		})
	}
	return docs, nil
}

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// Submit creates the seller request and its document rows as one atomic
// transaction; if any insert fails nothing is persisted.
func (s *SellerService) Submit(userID uuid.UUID, input *dto.CreateSellerRequestRequest) (*models.SellerRequest, error) {
	if len(input.DocumentKeys) == 0 {
		return nil, ErrNoDocuments
	}
	if !input.Agree {
		return nil, ErrTermsNotAgreed
	}

	businessTypes, err := toJSON(input.BusinessTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal business types: %w", err)
	}
	documentKeys, err := toJSON(input.DocumentKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document keys: %w", err)
	}

	request := models.SellerRequest{
		ID:            uuid.New(),
		SubmittedBy:   userID,
		BusinessName:  input.BusinessName,
		BusinessTypes: businessTypes,
		TINNumber:     input.TINNumber,
		Region:        input.Region,
		District:      input.District,
		Street:        input.Street,
		Landmark:      input.Landmark,
		Facebook:      input.Facebook,
		Instagram:     input.Instagram,
		TikTok:        input.TikTok,
		WhatsApp:      input.WhatsApp,
		Description:   input.Description,
		DocumentKeys:  documentKeys,
		AgreedToTerms: input.Agree,
		Status:        models.StatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SellerRequest{}).Where("tin_number = ?", input.TINNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check TIN uniqueness: %w", err)
		}
		if count > 0 {
			return ErrTINTaken
		}

		if err := tx.Create(&request).Error; err != nil {
			return fmt.Errorf("failed to create seller request: %w", err)
		}

		docs, err := buildDocuments(request.ID, userID, input.DocumentKeys)
		if err != nil {
			return err
		}
		if err := tx.Create(&docs).Error; err != nil {
			return fmt.Errorf("failed to create document records: %w", err)
		}
		request.Documents = docs

		return s.audit.RecordTx(tx, &userID, "seller_request.submitted", "seller_request", request.ID.String(), map[string]any{
			"business_name": input.BusinessName,
			"tin_number":    input.TINNumber,
		})
	})
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// ListByUser returns all requests submitted by the user, newest first.
func (s *SellerService) ListByUser(userID uuid.UUID) ([]models.SellerRequest, error) {
	var requests []models.SellerRequest
	err := s.db.Preload("Documents").
		Where("submitted_by = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list seller requests: %w", err)
	}
	return requests, nil
}

// ListByStatus returns requests for admin review, optionally filtered by
// status, oldest first.
func (s *SellerService) ListByStatus(status models.SellerRequestStatus) ([]models.SellerRequest, error) {
	q := s.db.Preload("Documents").Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.SellerRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list seller requests: %w", err)
	}
	return requests, nil
}

// GetByID loads a request with its documents.
func (s *SellerService) GetByID(id uuid.UUID) (*models.SellerRequest, error) {
	var request models.SellerRequest
	err := s.db.Preload("Documents").First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load seller request: %w", err)
	}
	return &request, nil
}

// Review drives the state machine: PENDING -> UNDER_REVIEW ->
// {APPROVED, REJECTED, MORE_INFO_NEEDED}, with decisions also allowed
// straight from PENDING. Every transition records the reviewer and
// timestamp and writes an audit event in the same transaction; approval
// promotes the submitter to the seller role.
func (s *SellerService) Review(reviewerID, requestID uuid.UUID, action, reason string) (*models.SellerRequest, error) {
	var request models.SellerRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&request, "id = ?", requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load seller request: %w", err)
		}

		var target models.SellerRequestStatus
		switch action {
		case ReviewActionStart:
			if request.Status != models.StatusPending {
				return ErrInvalidTransition
			}
			target = models.StatusUnderReview
		case ReviewActionApprove:
			target = models.StatusApproved
		case ReviewActionReject:
			target = models.StatusRejected
		case ReviewActionRequestInfo:
			target = models.StatusMoreInfoNeeded
		default:
			return ErrUnknownReviewAction
		}

		if action != ReviewActionStart {
			if !request.Status.Decidable() {
				return ErrInvalidTransition
			}
			if (action == ReviewActionReject || action == ReviewActionRequestInfo) && strings.TrimSpace(reason) == "" {
				return ErrReasonRequired
			}
		}

		now := time.Now()
		request.Status = target
		request.ReviewedBy = &reviewerID
		request.ReviewedAt = &now
		if target == models.StatusRejected || target == models.StatusMoreInfoNeeded {
			request.RejectionReason = &reason
		} else {
			request.RejectionReason = nil
		}
		if err := tx.Save(&request).Error; err != nil {
			return fmt.Errorf("failed to update seller request: %w", err)
		}

		if target == models.StatusApproved {
			if err := tx.Model(&models.User{}).
				Where("id = ?", request.SubmittedBy).
				Update("role", models.RoleSeller).Error; err != nil {
				return fmt.Errorf("failed to promote submitter: %w", err)
			}
		}

		return s.audit.RecordTx(tx, &reviewerID, "seller_request."+action, "seller_request", request.ID.String(), map[string]any{
			"status": string(target),
			"reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Resubmit lets the owner of a MORE_INFO_NEEDED request rewrite it and move
// it back to PENDING. Business fields and document rows are replaced in one
// transaction and the review fields are cleared.
func (s *SellerService) Resubmit(userID, requestID uuid.UUID, input *dto.CreateSellerRequestRequest) (*models.SellerRequest, error) {
	if len(input.DocumentKeys) == 0 {
		return nil, ErrNoDocuments
	}
	if !input.Agree {
		return nil, ErrTermsNotAgreed
	}

	var request models.SellerRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&request, "id = ?", requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load seller request: %w", err)
		}
		if request.SubmittedBy != userID {
			return ErrNotRequestOwner
		}
		if request.Status != models.StatusMoreInfoNeeded {
			return ErrInvalidTransition
		}

		var count int64
		if err := tx.Model(&models.SellerRequest{}).
			Where("tin_number = ? AND id <> ?", input.TINNumber, requestID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check TIN uniqueness: %w", err)
		}
		if count > 0 {
			return ErrTINTaken
		}

		businessTypes, err := toJSON(input.BusinessTypes)
		if err != nil {
			return fmt.Errorf("failed to marshal business types: %w", err)
		}
		documentKeys, err := toJSON(input.DocumentKeys)
		if err != nil {
			return fmt.Errorf("failed to marshal document keys: %w", err)
		}

		request.BusinessName = input.BusinessName
		request.BusinessTypes = businessTypes
		request.TINNumber = input.TINNumber
		request.Region = input.Region
		request.District = input.District
		request.Street = input.Street
		request.Landmark = input.Landmark
		request.Facebook = input.Facebook
		request.Instagram = input.Instagram
		request.TikTok = input.TikTok
		request.WhatsApp = input.WhatsApp
		request.Description = input.Description
		request.DocumentKeys = documentKeys
		request.AgreedToTerms = input.Agree
		request.Status = models.StatusPending
		request.RejectionReason = nil
		request.ReviewedBy = nil
		request.ReviewedAt = nil

		if err := tx.Save(&request).Error; err != nil {
			return fmt.Errorf("failed to update seller request: %w", err)
		}

		if err := tx.Where("request_id = ?", requestID).Delete(&models.SellerRequestDocument{}).Error; err != nil {
			return fmt.Errorf("failed to delete old documents: %w", err)
		}
		docs, err := buildDocuments(request.ID, userID, input.DocumentKeys)
		if err != nil {
			return err
		}
		if err := tx.Create(&docs).Error; err != nil {
			return fmt.Errorf("failed to create document records: %w", err)
		}
		request.Documents = docs

		return s.audit.RecordTx(tx, &userID, "seller_request.resubmitted", "seller_request", request.ID.String(), nil)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}
