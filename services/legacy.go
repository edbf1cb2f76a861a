package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"spa-booking-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	legacyCollection = "bookings"
	legacyTimeout    = 5 * time.Second
	SourcePrimary    = "primary"
	SourceLegacy     = "legacy"
)

// HistoricalOrder is a past booking from either store
type HistoricalOrder struct {
	ID         string
	BillNumber string
	CreatedAt  time.Time
	Customer   models.CustomerSnapshot
	TotalVND   int64
	TotalUSD   int64
	Note       string
	Lines      []models.BookingLine
	Source     string
}

// LegacyHistory reads bookings made before the current store existed
type LegacyHistory interface {
	ListByEmail(ctx context.Context, email string) ([]HistoricalOrder, error)
	Get(ctx context.Context, id string) (*HistoricalOrder, error)
}

type legacyOptions struct {
	Strength  string   `bson:"strength"`
	Therapist string   `bson:"therapist"`
	Focus     []string `bson:"focus"`
	Avoid     []string `bson:"avoid"`
	Tags      []string `bson:"tags"`
	Note      string   `bson:"note"`
}

type legacyItem struct {
	ServiceID string        `bson:"id"`
	Name      string        `bson:"name"`
	Qty       int           `bson:"qty"`
	Price     int64         `bson:"price"`
	PriceUSD  int64         `bson:"priceUSD"`
	Duration  int           `bson:"duration"`
	Options   legacyOptions `bson:"options"`
}

type legacyBooking struct {
	ID        primitive.ObjectID `bson:"_id"`
	BillNum   string             `bson:"billNum"`
	Name      string             `bson:"customerName"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Gender    string             `bson:"gender"`
	Note      string             `bson:"note"`
	TotalVND  int64              `bson:"totalVND"`
	TotalUSD  int64              `bson:"totalUSD"`
	CreatedAt time.Time          `bson:"createdAt"`
	Items     []legacyItem       `bson:"items"`
}

type MongoLegacyHistory struct {
	collection *mongo.Collection
}

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func NewMongoLegacyHistory(client *mongo.Client, database string) *MongoLegacyHistory {
	return &MongoLegacyHistory{collection: client.Database(database).Collection(legacyCollection)}
}

func (r *MongoLegacyHistory) ListByEmail(ctx context.Context, email string) ([]HistoricalOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, legacyTimeout)
	defer cancel()

	filter := bson.M{"email": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(email)) + "$",
		Options: "i",
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find legacy bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []legacyBooking
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode legacy bookings: %w", err)
	}
	out := make([]HistoricalOrder, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toHistorical())
	}
	return out, nil
}

func (r *MongoLegacyHistory) Get(ctx context.Context, id string) (*HistoricalOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, legacyTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc legacyBooking
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find legacy booking: %w", err)
	}
	h := doc.toHistorical()
	return &h, nil
}

func (d legacyBooking) toHistorical() HistoricalOrder {
	h := HistoricalOrder{
		ID:         d.ID.Hex(),
		BillNumber: d.BillNum,
		CreatedAt:  d.CreatedAt,
		Customer: models.CustomerSnapshot{
			Name:   d.Name,
			Phone:  d.Phone,
			Email:  strings.ToLower(d.Email),
			Gender: d.Gender,
		},
		TotalVND: d.TotalVND,
		TotalUSD: d.TotalUSD,
		Note:     d.Note,
		Source:   SourceLegacy,
		Lines:    make([]models.BookingLine, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		qty := it.Qty
		if qty <= 0 {
			qty = 1
		}
		h.Lines = append(h.Lines, models.BookingLine{
			ServiceID:   it.ServiceID,
			ServiceName: it.Name,
			Quantity:    qty,
			UnitPrice:   it.Price,
			UnitPriceUS: it.PriceUSD,
			TotalPrice:  it.Price * int64(qty),
			Duration:    it.Duration,
			Options:     it.Options.toOptions(),
		})
	}
	return h
}

// toOptions maps stored values back to raw enums. Older documents hold
// localized labels ("Mạnh", "Lưng") instead of enum values.
func (o legacyOptions) toOptions() models.Options {
	raw := func(v string) string {
		if r, ok := models.Unlabel(v); ok {
			return r
		}
		return v
	}
	out := models.Options{
		Strength:  models.Strength(raw(o.Strength)),
		Therapist: models.Therapist(raw(o.Therapist)),
		Note:      o.Note,
	}
	for _, a := range o.Focus {
		out.Focus = append(out.Focus, models.Area(raw(a)))
	}
	for _, a := range o.Avoid {
		out.Avoid = append(out.Avoid, models.Area(raw(a)))
	}
	for _, t := range o.Tags {
		out.Tags = append(out.Tags, models.Tag(raw(t)))
	}
	return out.Normalize()
}
