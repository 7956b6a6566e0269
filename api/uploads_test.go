package api_test

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/glucolog-org/coach/api"
	"github.com/glucolog-org/coach/config"
	"github.com/glucolog-org/coach/errors"
	"github.com/glucolog-org/coach/ingestion"
	"github.com/glucolog-org/coach/metrics"
	"github.com/glucolog-org/coach/store"
	"github.com/glucolog-org/coach/test"
	"github.com/glucolog-org/coach/uploads"
	uploadsTest "github.com/glucolog-org/coach/uploads/test"
)

var _ = Describe("Handler", func() {
	var ctrl *gomock.Controller
	var service *uploadsTest.MockService
	var handler *api.Handler
	var e *echo.Echo

	newContext := func(method, path string, body string) (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		}
		rec := httptest.NewRecorder()
		return e.NewContext(req, rec), rec
	}

	httpCode := func(err error) int {
		httpErr := errors.HttpError{}
		ExpectWithOffset(1, stderrors.As(err, &httpErr)).To(BeTrue())
		return httpErr.Code
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		service = uploadsTest.NewMockService(ctrl)

		cfg := config.New()
		Expect(cfg.LoadFromEnv()).To(Succeed())

		handler = api.NewHandler(api.Params{
			Uploads: service,
			Cfg:     cfg,
			Logger:  zap.NewNop().Sugar(),
		})
		e = echo.New()
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("CreateUpload", func() {
		It("ingests a raw csv body and returns 201", func() {
			csv := "Timestamp,Glucose\n2024-01-01 08:00,90\n"
			upload := uploadsTest.RandomUpload()

			service.EXPECT().
				Ingest(gomock.Any(), test.Match(func(create uploads.CreateUpload) bool {
					return create.Filename == "export.csv" && create.Data != nil
				})).
				Return(upload, nil)

			ctx, rec := newContext(http.MethodPost, "/v1/uploads?filename=export.csv", csv)
			Expect(handler.CreateUpload(ctx)).To(Succeed())
			Expect(rec.Code).To(Equal(http.StatusCreated))

			dto := api.UploadDto{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &dto)).To(Succeed())
			Expect(dto.Id).To(Equal(upload.Id.Hex()))
			Expect(dto.ReportCode).To(Equal(upload.ReportCode))
			Expect(dto.Readings).To(Equal(len(upload.Readings)))
		})

		It("passes the userId query parameter through", func() {
			userId := "user-1"
			service.EXPECT().
				Ingest(gomock.Any(), test.Match(func(create uploads.CreateUpload) bool {
					return create.UserId != nil && *create.UserId == userId
				})).
				Return(uploadsTest.RandomUpload(), nil)

			ctx, _ := newContext(http.MethodPost, "/v1/uploads?userId=user-1", "Timestamp,Glucose\n")
			Expect(handler.CreateUpload(ctx)).To(Succeed())
		})

		It("maps unresolved columns to 422", func() {
			service.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(nil, &ingestion.UnresolvedColumnsError{
				Missing: []ingestion.Role{ingestion.RoleGlucose},
				Headers: []string{"Steps", "Weight"},
			})

			ctx, _ := newContext(http.MethodPost, "/v1/uploads", "Steps,Weight\n")
			err := handler.CreateUpload(ctx)
			Expect(httpCode(err)).To(Equal(http.StatusUnprocessableEntity))
			Expect(err.Error()).To(ContainSubstring("Glucose"))
			Expect(err.Error()).To(ContainSubstring("Steps"))
		})

		It("maps an all-dropped file to 422", func() {
			service.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(nil, &ingestion.EmptySeriesError{TotalRows: 3})

			ctx, _ := newContext(http.MethodPost, "/v1/uploads", "Timestamp,Glucose\nbad,bad\n")
			Expect(httpCode(handler.CreateUpload(ctx))).To(Equal(http.StatusUnprocessableEntity))
		})

		It("maps an empty file to 400", func() {
			service.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(nil, ingestion.ErrEmptyFile)

			ctx, _ := newContext(http.MethodPost, "/v1/uploads", "")
			Expect(httpCode(handler.CreateUpload(ctx))).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GetUpload", func() {
		It("returns the upload", func() {
			upload := uploadsTest.RandomUpload()
			service.EXPECT().Get(gomock.Any(), upload.Id.Hex()).Return(upload, nil)

			ctx, rec := newContext(http.MethodGet, "/v1/uploads/"+upload.Id.Hex(), "")
			Expect(handler.GetUpload(ctx, upload.Id.Hex())).To(Succeed())
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("maps a missing upload to 404", func() {
			service.EXPECT().Get(gomock.Any(), "missing").Return(nil, uploads.ErrNotFound)

			ctx, _ := newContext(http.MethodGet, "/v1/uploads/missing", "")
			Expect(httpCode(handler.GetUpload(ctx, "missing"))).To(Equal(http.StatusNotFound))
		})
	})

	Describe("ListUploads", func() {
		It("lists uploads with the user filter and pagination", func() {
			list := []*uploads.Upload{uploadsTest.RandomUpload(), uploadsTest.RandomUpload()}
			service.EXPECT().
				List(gomock.Any(), test.Match(func(filter *uploads.Filter) bool {
					return filter.UserId != nil && *filter.UserId == "user-1"
				}), test.Match(func(p store.Pagination) bool {
					return p.Offset == 10 && p.Limit == 5
				})).
				Return(list, nil)

			ctx, rec := newContext(http.MethodGet, "/v1/uploads?userId=user-1&offset=10&limit=5", "")
			Expect(handler.ListUploads(ctx)).To(Succeed())
			Expect(rec.Code).To(Equal(http.StatusOK))

			dtos := []api.UploadDto{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &dtos)).To(Succeed())
			Expect(dtos).To(HaveLen(2))
		})
	})

	Describe("DeleteUpload", func() {
		It("returns 204 on success", func() {
			service.EXPECT().Delete(gomock.Any(), "abc").Return(nil)

			ctx, rec := newContext(http.MethodDelete, "/v1/uploads/abc", "")
			Expect(handler.DeleteUpload(ctx, "abc")).To(Succeed())
			Expect(rec.Code).To(Equal(http.StatusNoContent))
		})

		It("maps a missing upload to 404", func() {
			service.EXPECT().Delete(gomock.Any(), "abc").Return(uploads.ErrNotFound)

			ctx, _ := newContext(http.MethodDelete, "/v1/uploads/abc", "")
			Expect(httpCode(handler.DeleteUpload(ctx, "abc"))).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GetUploadMetrics", func() {
		It("returns the derived metrics", func() {
			result := &uploads.Metrics{
				Summary:  metrics.Summary{TotalReadings: 5, MeanGlucose: 145},
				Guidance: metrics.GuidanceFor(145),
			}
			service.EXPECT().Metrics(gomock.Any(), "abc").Return(result, nil)

			ctx, rec := newContext(http.MethodGet, "/v1/uploads/abc/metrics", "")
			Expect(handler.GetUploadMetrics(ctx, "abc")).To(Succeed())
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"totalReadings":5`))
		})
	})

	Describe("SuggestDose", func() {
		It("binds the request body and returns the suggestion", func() {
			service.EXPECT().
				SuggestDose(gomock.Any(), "abc", test.Match(func(request uploads.DoseRequest) bool {
					return request.MealCarbsGrams != nil && *request.MealCarbsGrams == 60
				})).
				Return(&uploads.DoseSuggestion{TotalUnits: 4}, nil)

			ctx, rec := newContext(http.MethodPost, "/v1/uploads/abc/doses", `{"mealCarbsGrams": 60}`)
			Expect(handler.SuggestDose(ctx, "abc")).To(Succeed())
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"totalUnits":4`))
		})

		It("maps an invalid sensitivity factor to 400", func() {
			service.EXPECT().SuggestDose(gomock.Any(), "abc", gomock.Any()).Return(nil, &metrics.InvalidParameterError{
				Parameter: "insulinSensitivityFactor",
			})

			ctx, _ := newContext(http.MethodPost, "/v1/uploads/abc/doses", `{"insulinSensitivityFactor": 0}`)
			Expect(httpCode(handler.SuggestDose(ctx, "abc"))).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DownloadReport", func() {
		It("streams the workbook as an attachment", func() {
			upload := uploadsTest.RandomUpload()
			id := upload.Id.Hex()
			summary, err := metrics.Summarize(upload.Readings, metrics.DefaultLowTarget, metrics.DefaultHighTarget)
			Expect(err).ToNot(HaveOccurred())

			service.EXPECT().Get(gomock.Any(), id).Return(upload, nil)
			service.EXPECT().Metrics(gomock.Any(), id).Return(&uploads.Metrics{
				Summary:       summary,
				DailyAverages: metrics.DailyAverages(upload.Readings),
				Guidance:      metrics.GuidanceFor(summary.LatestGlucose),
			}, nil)
			service.EXPECT().SuggestDose(gomock.Any(), id, uploads.DoseRequest{}).Return(&uploads.DoseSuggestion{}, nil)

			ctx, rec := newContext(http.MethodGet, "/v1/uploads/"+id+"/report.xlsx", "")
			Expect(handler.DownloadReport(ctx, id)).To(Succeed())
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get(echo.HeaderContentType)).To(ContainSubstring("spreadsheetml"))
			Expect(rec.Header().Get(echo.HeaderContentDisposition)).To(ContainSubstring(upload.ReportCode + ".xlsx"))
			Expect(rec.Body.Len()).ToNot(BeZero())
		})
	})
})
