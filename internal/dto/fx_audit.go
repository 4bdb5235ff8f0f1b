package dto

// PlanFxAuditTTLRequest sizes a retention run.
type PlanFxAuditTTLRequest struct {
	RetentionDays int `json:"retentionDays" validate:"required,gte=1"`
	BatchSize     int `json:"batchSize" validate:"required,gte=1"`
}
