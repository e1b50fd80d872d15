package mongostore

import (
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/erazemk/lekarna/internal/model"
)

// medicationDoc is a document in the medications collection. dateStop has
// been written as free-form strings by older clients, so it is decoded raw.
type medicationDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"userId"`
	Name       string             `bson:"name"`
	Dose       string             `bson:"dose"`
	TakenFor   string             `bson:"takenFor"`
	Frequency  string             `bson:"frequency"`
	TimesTaken string             `bson:"timesTaken"`
	DateStop   bson.RawValue      `bson:"dateStop,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// vitaminDoc is a document in the vitamins collection. expirationDate is a
// BSON date in current documents and a string in some imported ones.
type vitaminDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"userId"`
	SelectedType   string             `bson:"selectedType"`
	SelectedName   string             `bson:"selectedName"`
	Quantity       int                `bson:"quantity"`
	ExpirationDate bson.RawValue      `bson:"expirationDate,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

type productDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Category  string             `bson:"category"`
	Name      string             `bson:"name"`
	Quantity  int                `bson:"quantity"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// dayFromRaw normalizes a stored date field. BSON dates are read on the
// calendar of loc; strings go through model.ParseDay. Anything else,
// including values that do not parse, is absent.
func dayFromRaw(v bson.RawValue, loc *time.Location) *civil.Date {
	switch v.Type {
	case bson.TypeDateTime:
		ms, ok := v.DateTimeOK()
		if !ok {
			return nil
		}
		d := model.DayOf(time.UnixMilli(ms), loc)
		return &d
	case bson.TypeString:
		s, ok := v.StringValueOK()
		if !ok {
			return nil
		}
		d, err := model.ParseDay(s, loc)
		if err != nil {
			return nil
		}
		return &d
	default:
		return nil
	}
}

func (d medicationDoc) toModel(loc *time.Location) model.Medication {
	return model.Medication{
		ID:         d.ID.Hex(),
		OwnerID:    d.UserID,
		Name:       d.Name,
		Dose:       d.Dose,
		TakenFor:   d.TakenFor,
		Frequency:  d.Frequency,
		TimesTaken: d.TimesTaken,
		DateStop:   dayFromRaw(d.DateStop, loc),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (d vitaminDoc) toModel(loc *time.Location) model.Vitamin {
	return model.Vitamin{
		ID:             d.ID.Hex(),
		OwnerID:        d.UserID,
		SelectedType:   d.SelectedType,
		SelectedName:   d.SelectedName,
		Quantity:       d.Quantity,
		ExpirationDate: dayFromRaw(d.ExpirationDate, loc),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (d productDoc) toModel() model.Product {
	return model.Product{
		ID:        d.ID.Hex(),
		OwnerID:   d.UserID,
		Category:  d.Category,
		Name:      d.Name,
		Quantity:  d.Quantity,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// medicationFields are the editable fields as written to the collection.
// dateStop keeps its historical string type, in YYYY-MM-DD form.
func medicationFields(in model.MedicationInput) bson.M {
	var dateStop any
	if in.DateStop != nil {
		dateStop = in.DateStop.String()
	}
	return bson.M{
		"name":       in.Name,
		"dose":       in.Dose,
		"takenFor":   in.TakenFor,
		"frequency":  in.Frequency,
		"timesTaken": in.TimesTaken,
		"dateStop":   dateStop,
	}
}

// vitaminFields are the editable fields as written to the collection.
// expirationDate is stored as midnight of the day in loc.
func vitaminFields(in model.VitaminInput, loc *time.Location) bson.M {
	var expires any
	if in.ExpirationDate != nil {
		expires = primitive.NewDateTimeFromTime(in.ExpirationDate.In(loc))
	}
	return bson.M{
		"selectedType":   in.SelectedType,
		"selectedName":   in.SelectedName,
		"quantity":       in.Quantity,
		"expirationDate": expires,
	}
}

func productFields(in model.ProductInput) bson.M {
	return bson.M{
		"category": in.Category,
		"name":     in.Name,
		"quantity": in.Quantity,
	}
}

// inRange reports whether d is set and within [from, to].
func inRange(d *civil.Date, from, to civil.Date) bool {
	return d != nil && !d.Before(from) && !d.After(to)
}
