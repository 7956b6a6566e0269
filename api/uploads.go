package api

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/glucolog-org/coach/errors"
	"github.com/glucolog-org/coach/ingestion"
	"github.com/glucolog-org/coach/metrics"
	"github.com/glucolog-org/coach/reports"
	"github.com/glucolog-org/coach/uploads"
)

// CreateUpload ingests a CSV file.
// (POST /v1/uploads)
func (h *Handler) CreateUpload(ctx echo.Context) error {
	create := uploads.CreateUpload{}
	if userId := ctx.QueryParam("userId"); userId != "" {
		create.UserId = &userId
	}

	file, err := ctx.FormFile("file")
	if err == nil {
		src, err := file.Open()
		if err != nil {
			return errors.Wrap(errors.BadRequest, err)
		}
		defer src.Close()

		create.Filename = file.Filename
		create.Data = src
	} else {
		// Raw CSV body uploads are allowed as well.
		create.Filename = ctx.QueryParam("filename")
		create.Data = ctx.Request().Body
	}

	upload, err := h.uploads.Ingest(ctx.Request().Context(), create)
	if err != nil {
		return ingestionError(err)
	}

	return ctx.JSON(http.StatusCreated, NewUploadDto(upload))
}

// ListUploads lists previously ingested uploads, most recent first.
// (GET /v1/uploads)
func (h *Handler) ListUploads(ctx echo.Context) error {
	params := ListUploadsParams{}
	if err := ctx.Bind(&params); err != nil {
		return errors.Wrap(errors.BadRequest, err)
	}

	filter := &uploads.Filter{UserId: params.UserId}
	list, err := h.uploads.List(ctx.Request().Context(), filter, pagination(params.Offset, params.Limit))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, NewUploadDtos(list))
}

// GetUpload returns a single upload.
// (GET /v1/uploads/{uploadId})
func (h *Handler) GetUpload(ctx echo.Context, uploadId string) error {
	upload, err := h.uploads.Get(ctx.Request().Context(), uploadId)
	if err != nil {
		return uploadError(err)
	}

	return ctx.JSON(http.StatusOK, NewUploadDto(upload))
}

// DeleteUpload removes an upload and its readings.
// (DELETE /v1/uploads/{uploadId})
func (h *Handler) DeleteUpload(ctx echo.Context, uploadId string) error {
	if err := h.uploads.Delete(ctx.Request().Context(), uploadId); err != nil {
		return uploadError(err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetUploadMetrics recomputes the derived metrics of an upload.
// (GET /v1/uploads/{uploadId}/metrics)
func (h *Handler) GetUploadMetrics(ctx echo.Context, uploadId string) error {
	result, err := h.uploads.Metrics(ctx.Request().Context(), uploadId)
	if err != nil {
		return uploadError(err)
	}

	return ctx.JSON(http.StatusOK, result)
}

// SuggestDose computes a correction and carb bolus suggestion.
// (POST /v1/uploads/{uploadId}/doses)
func (h *Handler) SuggestDose(ctx echo.Context, uploadId string) error {
	request := uploads.DoseRequest{}
	if err := ctx.Bind(&request); err != nil {
		return errors.Wrap(errors.BadRequest, err)
	}

	suggestion, err := h.uploads.SuggestDose(ctx.Request().Context(), uploadId, request)
	if err != nil {
		return uploadError(err)
	}

	return ctx.JSON(http.StatusOK, suggestion)
}

// DownloadReport renders the upload's report workbook.
// (GET /v1/uploads/{uploadId}/report.xlsx)
func (h *Handler) DownloadReport(ctx echo.Context, uploadId string) error {
	reqCtx := ctx.Request().Context()
	upload, err := h.uploads.Get(reqCtx, uploadId)
	if err != nil {
		return uploadError(err)
	}
	result, err := h.uploads.Metrics(reqCtx, uploadId)
	if err != nil {
		return uploadError(err)
	}
	dose, err := h.uploads.SuggestDose(reqCtx, uploadId, uploads.DoseRequest{})
	if err != nil {
		return uploadError(err)
	}

	file, err := reports.NewReport(upload, *result, dose).Generate()
	if err != nil {
		return err
	}

	response := ctx.Response()
	response.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	response.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", upload.ReportCode+".xlsx"))
	response.WriteHeader(http.StatusOK)
	return file.Write(response)
}

// ingestionError maps ingestion failures onto client-facing status codes.
// The messages carry the failed roles and the original header list.
func ingestionError(err error) error {
	var unresolved *ingestion.UnresolvedColumnsError
	var empty *ingestion.EmptySeriesError
	var parse *csv.ParseError
	switch {
	case stderrors.As(err, &unresolved):
		return errors.Wrap(errors.ConstraintViolation, err)
	case stderrors.As(err, &empty):
		return errors.Wrap(errors.ConstraintViolation, err)
	case stderrors.As(err, &parse):
		return errors.Wrap(errors.BadRequest, err)
	case stderrors.Is(err, ingestion.ErrEmptyFile):
		return errors.Wrap(errors.BadRequest, err)
	default:
		return err
	}
}

func uploadError(err error) error {
	var invalid *metrics.InvalidParameterError
	switch {
	case err == uploads.ErrNotFound:
		return errors.Wrap(errors.NotFound, err)
	case stderrors.As(err, &invalid):
		return errors.Wrap(errors.BadRequest, err)
	default:
		return err
	}
}
