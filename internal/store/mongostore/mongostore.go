// Package mongostore keeps inventory records in MongoDB collections that use
// the mobile app's collection and field names. Date fields are read in every
// shape the app has written them. Owners are referenced by lekarna user IDs
// (UUID strings in userId), so documents owned through ObjectID user
// references are not visible until their userId is rewritten.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// Collection names.
const (
	MedicationsCollection = "medications"
	VitaminsCollection    = "vitamins"
	ProductsCollection    = "healthproducts"
)

// Records implements store.Records on a MongoDB database. Stored dates are
// normalized to calendar days in loc when read.
type Records struct {
	medications *mongo.Collection
	vitamins    *mongo.Collection
	products    *mongo.Collection
	loc         *time.Location
}

var _ store.Records = (*Records)(nil)

// New returns Records over the collections of db.
func New(db *mongo.Database, loc *time.Location) *Records {
	if loc == nil {
		loc = time.Local
	}
	return &Records{
		medications: db.Collection(MedicationsCollection),
		vitamins:    db.Collection(VitaminsCollection),
		products:    db.Collection(ProductsCollection),
		loc:         loc,
	}
}

// Connect dials uri and verifies the connection. The caller disconnects the client.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the owner indexes used by every query.
func (r *Records) EnsureIndexes(ctx context.Context) error {
	for _, c := range []*mongo.Collection{r.medications, r.vitamins, r.products} {
		_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}})
		if err != nil {
			return fmt.Errorf("creating index on %s: %w", c.Name(), err)
		}
	}
	return nil
}

// byID builds an owner-scoped filter for one document. An id that is not a
// valid ObjectID can never match, so it reports store.ErrNotFound.
func byID(ownerID, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return bson.M{"_id": oid, "userId": ownerID}, nil
}

func findAll[D any](ctx context.Context, c *mongo.Collection, filter bson.M, sortKey string) ([]D, error) {
	opts := options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}, {Key: "_id", Value: 1}})
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.Name(), err)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.Name(), err)
	}
	return docs, nil
}

func findOne[D any](ctx context.Context, c *mongo.Collection, ownerID, id string) (*D, error) {
	filter, err := byID(ownerID, id)
	if err != nil {
		return nil, err
	}
	var doc D
	err = c.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting from %s: %w", c.Name(), err)
	}
	return &doc, nil
}

func insert(ctx context.Context, c *mongo.Collection, ownerID string, fields bson.M) (string, error) {
	now := time.Now().UTC()
	fields["userId"] = ownerID
	fields["createdAt"] = now
	fields["updatedAt"] = now

	res, err := c.InsertOne(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("inserting into %s: %w", c.Name(), err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("inserting into %s: unexpected id %v", c.Name(), res.InsertedID)
	}
	return oid.Hex(), nil
}

func update[D any](ctx context.Context, c *mongo.Collection, ownerID, id string, fields bson.M) (*D, error) {
	filter, err := byID(ownerID, id)
	if err != nil {
		return nil, err
	}
	fields["updatedAt"] = time.Now().UTC()

	var doc D
	err = c.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.Name(), err)
	}
	return &doc, nil
}

func remove(ctx context.Context, c *mongo.Collection, ownerID, id string) error {
	filter, err := byID(ownerID, id)
	if err != nil {
		return err
	}
	res, err := c.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", c.Name(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListMedications returns all of the owner's medications.
func (r *Records) ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error) {
	docs, err := findAll[medicationDoc](ctx, r.medications, bson.M{"userId": ownerID}, "name")
	if err != nil {
		return nil, err
	}
	meds := make([]model.Medication, 0, len(docs))
	for _, d := range docs {
		meds = append(meds, d.toModel(r.loc))
	}
	return meds, nil
}

// ListMedicationsExpiring returns medications whose stop date is within [from, to].
// dateStop is stored with mixed types, so the range is applied after normalization.
func (r *Records) ListMedicationsExpiring(ctx context.Context, ownerID string, from, to civil.Date) ([]model.Medication, error) {
	all, err := r.ListMedications(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var meds []model.Medication
	for _, m := range all {
		if inRange(m.DateStop, from, to) {
			meds = append(meds, m)
		}
	}
	return meds, nil
}

// GetMedication returns one medication.
func (r *Records) GetMedication(ctx context.Context, ownerID, id string) (*model.Medication, error) {
	doc, err := findOne[medicationDoc](ctx, r.medications, ownerID, id)
	if err != nil {
		return nil, err
	}
	m := doc.toModel(r.loc)
	return &m, nil
}

// CreateMedication stores a new medication for the owner.
func (r *Records) CreateMedication(ctx context.Context, ownerID string, in model.MedicationInput) (*model.Medication, error) {
	id, err := insert(ctx, r.medications, ownerID, medicationFields(in))
	if err != nil {
		return nil, err
	}
	return r.GetMedication(ctx, ownerID, id)
}

// UpdateMedication replaces the editable fields of a medication.
func (r *Records) UpdateMedication(ctx context.Context, ownerID, id string, in model.MedicationInput) (*model.Medication, error) {
	doc, err := update[medicationDoc](ctx, r.medications, ownerID, id, medicationFields(in))
	if err != nil {
		return nil, err
	}
	m := doc.toModel(r.loc)
	return &m, nil
}

// DeleteMedication removes a medication.
func (r *Records) DeleteMedication(ctx context.Context, ownerID, id string) error {
	return remove(ctx, r.medications, ownerID, id)
}

// ListVitamins returns all of the owner's vitamins.
func (r *Records) ListVitamins(ctx context.Context, ownerID string) ([]model.Vitamin, error) {
	docs, err := findAll[vitaminDoc](ctx, r.vitamins, bson.M{"userId": ownerID}, "selectedName")
	if err != nil {
		return nil, err
	}
	vits := make([]model.Vitamin, 0, len(docs))
	for _, d := range docs {
		vits = append(vits, d.toModel(r.loc))
	}
	return vits, nil
}

// ListVitaminsExpiring returns vitamins whose expiration date is within [from, to].
func (r *Records) ListVitaminsExpiring(ctx context.Context, ownerID string, from, to civil.Date) ([]model.Vitamin, error) {
	all, err := r.ListVitamins(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var vits []model.Vitamin
	for _, v := range all {
		if inRange(v.ExpirationDate, from, to) {
			vits = append(vits, v)
		}
	}
	return vits, nil
}

// GetVitamin returns one vitamin.
func (r *Records) GetVitamin(ctx context.Context, ownerID, id string) (*model.Vitamin, error) {
	doc, err := findOne[vitaminDoc](ctx, r.vitamins, ownerID, id)
	if err != nil {
		return nil, err
	}
	v := doc.toModel(r.loc)
	return &v, nil
}

// CreateVitamin stores a new vitamin for the owner.
func (r *Records) CreateVitamin(ctx context.Context, ownerID string, in model.VitaminInput) (*model.Vitamin, error) {
	id, err := insert(ctx, r.vitamins, ownerID, vitaminFields(in, r.loc))
	if err != nil {
		return nil, err
	}
	return r.GetVitamin(ctx, ownerID, id)
}

// UpdateVitamin replaces the editable fields of a vitamin.
func (r *Records) UpdateVitamin(ctx context.Context, ownerID, id string, in model.VitaminInput) (*model.Vitamin, error) {
	doc, err := update[vitaminDoc](ctx, r.vitamins, ownerID, id, vitaminFields(in, r.loc))
	if err != nil {
		return nil, err
	}
	v := doc.toModel(r.loc)
	return &v, nil
}

// DeleteVitamin removes a vitamin.
func (r *Records) DeleteVitamin(ctx context.Context, ownerID, id string) error {
	return remove(ctx, r.vitamins, ownerID, id)
}

// ListProducts returns the owner's health products, optionally filtered by category.
func (r *Records) ListProducts(ctx context.Context, ownerID, category string) ([]model.Product, error) {
	filter := bson.M{"userId": ownerID}
	if category != "" {
		filter["category"] = category
	}
	docs, err := findAll[productDoc](ctx, r.products, filter, "name")
	if err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

// GetProduct returns one health product.
func (r *Records) GetProduct(ctx context.Context, ownerID, id string) (*model.Product, error) {
	doc, err := findOne[productDoc](ctx, r.products, ownerID, id)
	if err != nil {
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

// CreateProduct stores a new health product for the owner.
func (r *Records) CreateProduct(ctx context.Context, ownerID string, in model.ProductInput) (*model.Product, error) {
	id, err := insert(ctx, r.products, ownerID, productFields(in))
	if err != nil {
		return nil, err
	}
	return r.GetProduct(ctx, ownerID, id)
}

// UpdateProduct replaces the editable fields of a health product.
func (r *Records) UpdateProduct(ctx context.Context, ownerID, id string, in model.ProductInput) (*model.Product, error) {
	doc, err := update[productDoc](ctx, r.products, ownerID, id, productFields(in))
	if err != nil {
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

// DeleteProduct removes a health product.
func (r *Records) DeleteProduct(ctx context.Context, ownerID, id string) error {
	return remove(ctx, r.products, ownerID, id)
}
