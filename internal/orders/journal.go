package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrOrderNotFound = errors.New("order not found")

type lineDocument struct {
	ProductID int64  `bson:"product_id"`
	Name      string `bson:"name"`
	UnitPrice string `bson:"unit_price"`
	Quantity  int    `bson:"quantity"`
	Total     string `bson:"total"`
}

// orderDocument is the stored form of a submitted order. Money is kept as
// decimal text.
type orderDocument struct {
	ID           string         `bson:"_id"`
	SessionID    string         `bson:"session_id"`
	CustomerName string         `bson:"customer_name"`
	Phone        string         `bson:"phone"`
	Address      string         `bson:"address"`
	LocationURL  string         `bson:"location_url"`
	Notes        string         `bson:"notes,omitempty"`
	Lines        []lineDocument `bson:"lines"`
	TotalItems   int            `bson:"total_items"`
	TotalPrice   string         `bson:"total_price"`
	Message      string         `bson:"message"`
	HandoffURL   string         `bson:"handoff_url"`
	SubmittedAt  time.Time      `bson:"submitted_at"`
}

func toDocument(o domain.SubmittedOrder) orderDocument {
	lines := make([]lineDocument, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = lineDocument{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.UnitPrice().StringFixed(2),
			Quantity:  l.Quantity,
			Total:     l.Total().StringFixed(2),
		}
	}
	return orderDocument{
		ID:           o.ID.String(),
		SessionID:    o.SessionID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Address:      o.Address,
		LocationURL:  o.LocationURL,
		Notes:        o.Notes,
		Lines:        lines,
		TotalItems:   domain.TotalItems(o.Lines),
		TotalPrice:   o.TotalPrice.StringFixed(2),
		Message:      o.Message,
		HandoffURL:   o.HandoffURL,
		SubmittedAt:  o.SubmittedAt,
	}
}

func (d orderDocument) toOrder() (domain.SubmittedOrder, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.SubmittedOrder{}, fmt.Errorf("invalid order id %q: %w", d.ID, err)
	}
	total, err := decimal.NewFromString(d.TotalPrice)
	if err != nil {
		return domain.SubmittedOrder{}, fmt.Errorf("invalid total for order %s: %w", d.ID, err)
	}

	lines := make([]domain.CartLine, len(d.Lines))
	for i, l := range d.Lines {
		unit, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			return domain.SubmittedOrder{}, fmt.Errorf("invalid unit price for order %s: %w", d.ID, err)
		}
		lines[i] = domain.CartLine{
			Product:  domain.Product{ID: l.ProductID, Name: l.Name, Price: unit},
			Quantity: l.Quantity,
		}
	}

	return domain.SubmittedOrder{
		ID:           id,
		SessionID:    d.SessionID,
		CustomerName: d.CustomerName,
		Phone:        d.Phone,
		Address:      d.Address,
		LocationURL:  d.LocationURL,
		Notes:        d.Notes,
		Lines:        lines,
		TotalPrice:   total,
		Message:      d.Message,
		HandoffURL:   d.HandoffURL,
		SubmittedAt:  d.SubmittedAt,
	}, nil
}

// MongoJournal records every handed-off order.
type MongoJournal struct {
	collection *mongo.Collection
}

func NewMongoJournal(db *mongo.Database) *MongoJournal {
	return &MongoJournal{
		collection: db.Collection("orders"),
	}
}

// Record stores order. Recording the same order twice is not an error.
func (j *MongoJournal) Record(ctx context.Context, order domain.SubmittedOrder) error {
	_, err := j.collection.InsertOne(ctx, toDocument(order))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

func (j *MongoJournal) Get(ctx context.Context, id uuid.UUID) (domain.SubmittedOrder, error) {
	var doc orderDocument
	err := j.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.SubmittedOrder{}, ErrOrderNotFound
		}
		return domain.SubmittedOrder{}, fmt.Errorf("failed to get order: %w", err)
	}
	return doc.toOrder()
}

// ListBySession returns the orders of a session, newest first.
func (j *MongoJournal) ListBySession(ctx context.Context, sessionID string) ([]domain.SubmittedOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := j.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	result := make([]domain.SubmittedOrder, 0, len(docs))
	for _, d := range docs {
		o, err := d.toOrder()
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

func (j *MongoJournal) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "submitted_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "submitted_at", Value: -1}},
		},
	}

	_, err := j.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
