package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ColleExportFormat enumerates supported planning export formats.
type ColleExportFormat string

const (
	ColleExportFormatCSV   ColleExportFormat = "csv"
	ColleExportFormatPDF   ColleExportFormat = "pdf"
	ColleExportFormatExcel ColleExportFormat = "excel"
)

// ColleExportStatus captures background job lifecycle states, mirroring
// the teacher's ReportStatus enum.
type ColleExportStatus string

const (
	ColleExportStatusQueued     ColleExportStatus = "QUEUED"
	ColleExportStatusProcessing ColleExportStatus = "PROCESSING"
	ColleExportStatusFinished   ColleExportStatus = "FINISHED"
	ColleExportStatusFailed     ColleExportStatus = "FAILED"
)

// ColleExportJob is persisted background job metadata for one planning
// render, adapted from the teacher's ReportJob.
type ColleExportJob struct {
	ID           string              `db:"id" json:"id"`
	PlanningID   string              `db:"planning_id" json:"planningId"`
	Params       ColleExportParams   `db:"params" json:"params"`
	Status       ColleExportStatus   `db:"status" json:"status"`
	Progress     int                 `db:"progress" json:"progress"`
	ResultURL    *string             `db:"result_url" json:"resultUrl,omitempty"`
	CreatedBy    string              `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
	FinishedAt   *time.Time          `db:"finished_at" json:"finishedAt,omitempty"`
	ErrorMessage *string             `db:"error_message" json:"errorMessage,omitempty"`
}

// ColleExportParams stores request-scoped options persisted as JSONB.
type ColleExportParams struct {
	Format ColleExportFormat `json:"format"`
	Title  string            `json:"title,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ColleExportParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ColleExportParams) Scan(value interface{}) error {
	if value == nil {
		*p = ColleExportParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ColleExportParams", value)
	}
	if len(data) == 0 {
		*p = ColleExportParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal export job params: %w", err)
	}
	return nil
}
