package uploads

import (
	"context"
	"errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/glucolog-org/coach/ingestion"
	"github.com/glucolog-org/coach/metrics"
	"github.com/glucolog-org/coach/store"
)

const CollectionName = "uploads"

var ErrNotFound = errors.New("upload not found")

//go:generate go tool mockgen -source=./uploads.go -destination=./test/mocks.go -package test

type Service interface {
	Ingest(ctx context.Context, create CreateUpload) (*Upload, error)
	Get(ctx context.Context, id string) (*Upload, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Upload, error)
	Delete(ctx context.Context, id string) error
	Metrics(ctx context.Context, id string) (*Metrics, error)
	SuggestDose(ctx context.Context, id string, request DoseRequest) (*DoseSuggestion, error)
}

type Repository interface {
	Create(ctx context.Context, upload Upload) (*Upload, error)
	Get(ctx context.Context, id string) (*Upload, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Upload, error)
	Delete(ctx context.Context, id string) error
}

// Upload is one ingested CSV file. The resolved roles and readings are
// stored as ingested; derived metrics are recomputed on every query and
// never persisted.
type Upload struct {
	Id          *primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserId      *string                 `bson:"userId,omitempty" json:"userId,omitempty"`
	Filename    string                  `bson:"filename" json:"filename"`
	ReportCode  string                  `bson:"reportCode" json:"reportCode"`
	Headers     []string                `bson:"headers" json:"headers"`
	Roles       ingestion.ColumnRoles   `bson:"roles" json:"roles"`
	Readings    ingestion.ReadingSeries `bson:"readings" json:"readings"`
	DroppedRows int                     `bson:"droppedRows" json:"droppedRows"`
	CreatedTime time.Time               `bson:"createdTime" json:"createdTime"`
}

// CreateUpload carries one file to ingest. UserId is an explicit session
// value supplied by the caller; the ingestion core itself never sees it.
type CreateUpload struct {
	UserId   *string
	Filename string
	Data     io.Reader
}

type Filter struct {
	UserId *string
}

// Metrics is the full set of derived values for one upload.
type Metrics struct {
	Summary       metrics.Summary        `json:"summary"`
	DailyAverages []metrics.DailyAverage `json:"dailyAverages"`
	Guidance      metrics.Guidance       `json:"guidance"`
}

// DoseRequest is a single dose computation against an upload. Unset fields
// fall back to the latest reading and the configured defaults.
type DoseRequest struct {
	CurrentGlucose           *float64 `json:"currentGlucose,omitempty"`
	TargetGlucose            *float64 `json:"targetGlucose,omitempty"`
	InsulinSensitivityFactor *float64 `json:"insulinSensitivityFactor,omitempty"`
	MealCarbsGrams           *float64 `json:"mealCarbsGrams,omitempty"`
	CarbRatioGramsPerUnit    *float64 `json:"carbRatioGramsPerUnit,omitempty"`
}

type DoseSuggestion struct {
	CurrentGlucose           float64 `json:"currentGlucose"`
	TargetGlucose            float64 `json:"targetGlucose"`
	InsulinSensitivityFactor float64 `json:"insulinSensitivityFactor"`
	CorrectionUnits          float64 `json:"correctionUnits"`
	CarbBolusUnits           float64 `json:"carbBolusUnits"`
	TotalUnits               float64 `json:"totalUnits"`
}
