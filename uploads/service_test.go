package uploads_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/glucolog-org/coach/config"
	"github.com/glucolog-org/coach/ingestion"
	"github.com/glucolog-org/coach/metrics"
	"github.com/glucolog-org/coach/pointer"
	"github.com/glucolog-org/coach/test"
	"github.com/glucolog-org/coach/uploads"
	uploadsTest "github.com/glucolog-org/coach/uploads/test"
)

var _ = Describe("Service", func() {
	var ctrl *gomock.Controller
	var repo *uploadsTest.MockRepository
	var service uploads.Service
	var cfg *config.Config

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		repo = uploadsTest.NewMockRepository(ctrl)

		cfg = config.New()
		Expect(cfg.LoadFromEnv()).To(Succeed())

		codes, err := uploads.NewReportCodeGenerator()
		Expect(err).ToNot(HaveOccurred())

		service, err = uploads.NewService(repo, codes, cfg, zap.NewNop().Sugar())
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Ingest", func() {
		It("persists the parsed upload with a report code", func() {
			csv := strings.Join([]string{
				"Timestamp,Glucose,Bolus Insulin",
				"2024-01-01 08:00,90,2",
				"2024-01-01 20:00,200,4",
			}, "\n")
			userId := "user-1234"

			repo.EXPECT().
				Create(gomock.Any(), test.Match(func(upload uploads.Upload) bool {
					return upload.Filename == "export.csv" &&
						*upload.UserId == userId &&
						upload.ReportCode != "" &&
						upload.Roles.Glucose == "Glucose" &&
						len(upload.Readings) == 2 &&
						upload.DroppedRows == 0 &&
						!upload.CreatedTime.IsZero()
				})).
				DoAndReturn(func(ctx context.Context, upload uploads.Upload) (*uploads.Upload, error) {
					return &upload, nil
				})

			created, err := service.Ingest(context.Background(), uploads.CreateUpload{
				UserId:   &userId,
				Filename: "export.csv",
				Data:     strings.NewReader(csv),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Readings[0].Glucose).To(Equal(90.0))
			Expect(created.Readings[1].InsulinTotal).To(Equal(4.0))
		})

		It("does not persist anything when column resolution fails", func() {
			csv := "Steps,Weight\n4000,82\n"

			_, err := service.Ingest(context.Background(), uploads.CreateUpload{
				Filename: "export.csv",
				Data:     strings.NewReader(csv),
			})
			unresolved := &ingestion.UnresolvedColumnsError{}
			Expect(errors.As(err, &unresolved)).To(BeTrue())
		})
	})

	Describe("Metrics", func() {
		It("derives summary, daily averages and guidance from the stored readings", func() {
			upload := uploadsTest.RandomUpload()
			repo.EXPECT().Get(gomock.Any(), upload.Id.Hex()).Return(upload, nil)

			result, err := service.Metrics(context.Background(), upload.Id.Hex())
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Summary.TotalReadings).To(Equal(len(upload.Readings)))
			Expect(result.DailyAverages).ToNot(BeEmpty())

			expected := metrics.GuidanceFor(result.Summary.LatestGlucose)
			Expect(result.Guidance).To(Equal(expected))
		})

		It("propagates repository errors", func() {
			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, uploads.ErrNotFound)

			_, err := service.Metrics(context.Background(), "missing")
			Expect(err).To(MatchError(uploads.ErrNotFound))
		})
	})

	Describe("SuggestDose", func() {
		It("falls back to the latest reading and configured defaults", func() {
			upload := uploadsTest.RandomUpload()
			upload.Readings[len(upload.Readings)-1].Glucose = 220
			repo.EXPECT().Get(gomock.Any(), upload.Id.Hex()).Return(upload, nil)

			suggestion, err := service.SuggestDose(context.Background(), upload.Id.Hex(), uploads.DoseRequest{})
			Expect(err).ToNot(HaveOccurred())
			Expect(suggestion.CurrentGlucose).To(Equal(220.0))
			Expect(suggestion.TargetGlucose).To(Equal(cfg.DefaultTargetGlucose))
			Expect(suggestion.InsulinSensitivityFactor).To(Equal(cfg.DefaultInsulinSensitivityFactor))
			Expect(suggestion.CorrectionUnits).To(BeNumerically("~", 4.95, 0.01))
			Expect(suggestion.CarbBolusUnits).To(Equal(0.0))
			Expect(suggestion.TotalUnits).To(Equal(suggestion.CorrectionUnits))
		})

		It("uses explicit parameters over the defaults", func() {
			upload := uploadsTest.RandomUpload()
			repo.EXPECT().Get(gomock.Any(), upload.Id.Hex()).Return(upload, nil)

			suggestion, err := service.SuggestDose(context.Background(), upload.Id.Hex(), uploads.DoseRequest{
				CurrentGlucose:           pointer.FromAny(180.0),
				TargetGlucose:            pointer.FromAny(120.0),
				InsulinSensitivityFactor: pointer.FromAny(30.0),
				MealCarbsGrams:           pointer.FromAny(60.0),
				CarbRatioGramsPerUnit:    pointer.FromAny(15.0),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(suggestion.CorrectionUnits).To(Equal(2.0))
			Expect(suggestion.CarbBolusUnits).To(Equal(4.0))
			Expect(suggestion.TotalUnits).To(Equal(6.0))
		})

		It("rejects a non-positive sensitivity factor", func() {
			upload := uploadsTest.RandomUpload()
			repo.EXPECT().Get(gomock.Any(), upload.Id.Hex()).Return(upload, nil)

			_, err := service.SuggestDose(context.Background(), upload.Id.Hex(), uploads.DoseRequest{
				InsulinSensitivityFactor: pointer.FromAny(0.0),
			})
			invalid := &metrics.InvalidParameterError{}
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("delegates to the repository", func() {
			upload := uploadsTest.RandomUpload()
			repo.EXPECT().Delete(gomock.Any(), upload.Id.Hex()).Return(nil)

			Expect(service.Delete(context.Background(), upload.Id.Hex())).To(Succeed())
		})
	})
})
