package test

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/glucolog-org/coach/ingestion"
	"github.com/glucolog-org/coach/test"
	"github.com/glucolog-org/coach/uploads"
)

func strp(val string) *string {
	return &val
}

// RandomUpload produces an upload with an in-range reading series suitable
// for most service and report tests.
func RandomUpload() *uploads.Upload {
	id := primitive.NewObjectID()
	start := test.Faker.Time().Time(time.Now().Add(-24 * time.Hour))
	readings := RandomReadings(start, 5)

	return &uploads.Upload{
		Id:         &id,
		UserId:     strp(test.Faker.UUID().V4()),
		Filename:   test.Faker.Lorem().Word() + ".csv",
		ReportCode: "TEST-" + test.Faker.RandomStringWithLength(8),
		Headers:    []string{"DateTime", "Blood Glucose (mg/dL)", "Insulin (Units)"},
		Roles: ingestion.ColumnRoles{
			Timestamp: "DateTime",
			Glucose:   "Blood Glucose (mg/dL)",
			Insulin:   []string{"Insulin (Units)"},
		},
		Readings:    readings,
		DroppedRows: 0,
		CreatedTime: time.Now(),
	}
}

// RandomReadings returns count in-range readings spaced one hour apart.
func RandomReadings(start time.Time, count int) ingestion.ReadingSeries {
	readings := make(ingestion.ReadingSeries, count)
	for i := range readings {
		readings[i] = ingestion.Reading{
			Timestamp:    start.Add(time.Duration(i) * time.Hour),
			Glucose:      test.Faker.Float64(0, 80, 175),
			InsulinTotal: test.Faker.Float64(1, 0, 8),
		}
	}
	return readings
}
