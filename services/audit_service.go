package services

import (
	"drivebox/models"
	"drivebox/repositories"
	"drivebox/utils"
)

// Audit action names recorded by the service layer.
const (
	AuditActionUpload       = "upload"
	AuditActionDelete       = "delete"
	AuditActionRestore      = "restore"
	AuditActionPurge        = "purge"
	AuditActionShare        = "share"
	AuditActionRevoke       = "revoke"
	AuditActionAutoExtract  = "auto_extract"
	AuditActionBulkDownload = "bulk_download"
)

// RequestMeta is the per-request metadata attached to audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type AuditService struct {
	auditRepo *repositories.AuditRepository
}

func NewAuditService(auditRepo *repositories.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record appends an audit entry. Fire-and-forget: a failed write is
// logged and never propagated to the caller.
func (s *AuditService) Record(userID uint, action, targetType string, targetID *uint, details string, meta RequestMeta) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		utils.LogError("failed to record audit entry", err)
	}
}

func (s *AuditService) List(limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.auditRepo.List(limit, offset)
}
