package mongostore

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/erazemk/lekarna/internal/model"
)

func decode[D any](t *testing.T, doc bson.M) D {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var out D
	require.NoError(t, bson.Unmarshal(raw, &out))
	return out
}

func TestMedicationDoc_DateStopForms(t *testing.T) {
	june10 := civil.Date{Year: 2024, Month: time.June, Day: 10}
	loc, err := time.LoadLocation("Europe/Ljubljana")
	require.NoError(t, err)

	tests := []struct {
		name     string
		dateStop any
		want     *civil.Date
	}{
		{"iso string", "2024-06-10", &june10},
		{"us string", "6/10/2024", &june10},
		{"js date string", "Mon Jun 10 2024", &june10},
		{"bson date late evening", primitive.NewDateTimeFromTime(time.Date(2024, 6, 10, 23, 59, 0, 0, loc)), &june10},
		{"bson date utc instant", primitive.NewDateTimeFromTime(time.Date(2024, 6, 9, 22, 30, 0, 0, time.UTC)), &june10},
		{"garbage string", "when it runs out", nil},
		{"empty string", "", nil},
		{"null", nil, nil},
		{"number", int32(20240610), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode[medicationDoc](t, bson.M{
				"_id":      primitive.NewObjectID(),
				"userId":   "u1",
				"name":     "Aspirin",
				"dateStop": tt.dateStop,
			})
			m := doc.toModel(loc)
			assert.Equal(t, "Aspirin", m.Name)
			assert.Equal(t, "u1", m.OwnerID)
			assert.Equal(t, tt.want, m.DateStop)
		})
	}
}

func TestMedicationDoc_MissingDateStop(t *testing.T) {
	doc := decode[medicationDoc](t, bson.M{"_id": primitive.NewObjectID(), "userId": "u1", "name": "Ibuprofen"})
	assert.Nil(t, doc.toModel(time.UTC).DateStop)
}

func TestVitaminFieldsRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	d := civil.Date{Year: 2024, Month: time.June, Day: 11}

	fields := vitaminFields(model.VitaminInput{SelectedName: "Vitamin C", Quantity: 30, ExpirationDate: &d}, loc)
	fields["_id"] = primitive.NewObjectID()
	fields["userId"] = "u2"

	v := decode[vitaminDoc](t, fields).toModel(loc)
	require.NotNil(t, v.ExpirationDate)
	assert.Equal(t, d, *v.ExpirationDate)
	assert.Equal(t, 30, v.Quantity)
}

func TestMedicationFieldsWritesDayString(t *testing.T) {
	d := civil.Date{Year: 2024, Month: time.June, Day: 15}
	fields := medicationFields(model.MedicationInput{Name: "X", DateStop: &d})
	assert.Equal(t, "2024-06-15", fields["dateStop"])

	fields = medicationFields(model.MedicationInput{Name: "Y"})
	assert.Nil(t, fields["dateStop"])
}

func TestByIDRejectsInvalidObjectID(t *testing.T) {
	_, err := byID("u1", "not-an-object-id")
	assert.Error(t, err)

	oid := primitive.NewObjectID()
	filter, err := byID("u1", oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, filter["_id"])
	assert.Equal(t, "u1", filter["userId"])
}

func TestInRange(t *testing.T) {
	from := civil.Date{Year: 2024, Month: time.June, Day: 10}
	to := from.AddDays(1)
	before := from.AddDays(-1)
	after := to.AddDays(1)

	assert.True(t, inRange(&from, from, to))
	assert.True(t, inRange(&to, from, to))
	assert.False(t, inRange(&before, from, to))
	assert.False(t, inRange(&after, from, to))
	assert.False(t, inRange(nil, from, to))
}
