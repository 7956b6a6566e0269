package uploads

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glucolog-org/coach/config"
	"github.com/glucolog-org/coach/ingestion"
	"github.com/glucolog-org/coach/metrics"
	"github.com/glucolog-org/coach/pointer"
	"github.com/glucolog-org/coach/store"
)

type service struct {
	repo   Repository
	codes  ReportCodeGenerator
	cfg    *config.Config
	logger *zap.SugaredLogger
}

var _ Service = &service{}

func NewService(repo Repository, codes ReportCodeGenerator, cfg *config.Config, logger *zap.SugaredLogger) (Service, error) {
	return &service{
		repo:   repo,
		codes:  codes,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (s *service) Ingest(ctx context.Context, create CreateUpload) (*Upload, error) {
	result, err := ingestion.Ingest(create.Data)
	if err != nil {
		return nil, err
	}

	upload := Upload{
		UserId:      create.UserId,
		Filename:    create.Filename,
		ReportCode:  s.codes.Generate(),
		Headers:     result.Headers,
		Roles:       result.Roles,
		Readings:    result.Series,
		DroppedRows: result.DroppedRows,
		CreatedTime: time.Now(),
	}

	created, err := s.repo.Create(ctx, upload)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("ingested upload",
		"uploadId", created.Id.Hex(),
		"filename", created.Filename,
		"readings", len(created.Readings),
		"droppedRows", created.DroppedRows,
	)
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (*Upload, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Upload, error) {
	return s.repo.List(ctx, filter, pagination)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Metrics(ctx context.Context, id string) (*Metrics, error) {
	upload, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := metrics.Summarize(upload.Readings, s.cfg.LowGlucoseThreshold, s.cfg.HighGlucoseThreshold)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Summary:       summary,
		DailyAverages: metrics.DailyAverages(upload.Readings),
		Guidance:      metrics.GuidanceFor(summary.LatestGlucose),
	}, nil
}

func (s *service) SuggestDose(ctx context.Context, id string, request DoseRequest) (*DoseSuggestion, error) {
	upload, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	latest, err := metrics.LatestGlucose(upload.Readings)
	if err != nil {
		return nil, err
	}

	current := pointer.ToFloat64(request.CurrentGlucose, latest)
	target := pointer.ToFloat64(request.TargetGlucose, s.cfg.DefaultTargetGlucose)
	isf := pointer.ToFloat64(request.InsulinSensitivityFactor, s.cfg.DefaultInsulinSensitivityFactor)
	carbs := pointer.ToFloat64(request.MealCarbsGrams, 0)
	carbRatio := pointer.ToFloat64(request.CarbRatioGramsPerUnit, 0)

	correction, err := metrics.CorrectionDose(current, target, isf)
	if err != nil {
		return nil, err
	}
	carbBolus := metrics.CarbBolusDose(carbs, carbRatio)

	return &DoseSuggestion{
		CurrentGlucose:           current,
		TargetGlucose:            target,
		InsulinSensitivityFactor: isf,
		CorrectionUnits:          correction,
		CarbBolusUnits:           carbBolus,
		TotalUnits:               correction + carbBolus,
	}, nil
}
