package api

import (
	"time"

	"github.com/glucolog-org/coach/ingestion"
)

// UploadDto is the wire representation of an upload. The reading series is
// summarized by its length; clients fetch readings through the metrics and
// report endpoints.
type UploadDto struct {
	Id          string                `json:"id"`
	UserId      *string               `json:"userId,omitempty"`
	Filename    string                `json:"filename"`
	ReportCode  string                `json:"reportCode"`
	Headers     []string              `json:"headers"`
	Roles       ingestion.ColumnRoles `json:"roles"`
	Readings    int                   `json:"readings"`
	DroppedRows int                   `json:"droppedRows"`
	CreatedTime time.Time             `json:"createdTime"`
}

type Offset = int
type Limit = int

type ListUploadsParams struct {
	UserId *string `query:"userId"`
	Offset *Offset `query:"offset"`
	Limit  *Limit  `query:"limit"`
}
