package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const codeIndex = "code_unique"

var kinds = []domain.EntityKind{
	domain.EntityKindRestaurant,
	domain.EntityKindMenu,
	domain.EntityKindCategory,
	domain.EntityKindOrder,
	domain.EntityKindEmployee,
}

type mongoEntityRepository struct {
	db *mongo.Database
}

// NewMongoEntityRepository creates mongoEntityRepository that implements
// port.EntityRepository. Every kind lives in its own collection.
func NewMongoEntityRepository(ctx context.Context, db *mongo.Database) (port.EntityRepository, error) {
	r := &mongoEntityRepository{db: db}
	for _, kind := range kinds {
		_, err := r.collection(kind).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "code", Value: 1}},
				Options: options.Index().
					SetName(codeIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"code": bson.M{"$exists": true}}),
			},
			{
				Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "seq", Value: -1}},
				Options: options.Index().SetName("created_desc"),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s indexes: %w", kind, err)
		}
	}
	return r, nil
}

func (r *mongoEntityRepository) collection(kind domain.EntityKind) *mongo.Collection {
	return r.db.Collection(string(kind))
}

// FindByID finds by kind and id
func (r *mongoEntityRepository) FindByID(ctx context.Context, kind domain.EntityKind, id uuid.UUID) (*domain.Entity, error) {
	var doc mongoEntity
	err := r.collection(kind).FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrEntityNotFound)
		}
		return nil, fmt.Errorf("error finding entity: %w", err)
	}
	return doc.ToDomain(kind)
}

// FindLatestCode returns the code of the latest created entity of kind
// starting with prefix
func (r *mongoEntityRepository) FindLatestCode(ctx context.Context, kind domain.EntityKind, prefix string) (*string, error) {
	filter := bson.M{"code": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "seq", Value: -1}}).
		SetProjection(bson.M{"code": 1})

	var doc struct {
		Code string `bson:"code"`
	}
	err := r.collection(kind).FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding latest code: %w", err)
	}
	return &doc.Code, nil
}

// Create inserts a new entity
func (r *mongoEntityRepository) Create(ctx context.Context, entity domain.Entity) error {
	doc := mongoEntity{
		ID:        entity.ID.String(),
		Seq:       primitive.NewObjectID(),
		Code:      entity.Code,
		Body:      body(entity.Fields),
		CreatedAt: entity.CreatedAt,
		CreatedBy: entity.CreatedBy,
		UpdatedAt: entity.UpdatedAt,
		UpdatedBy: entity.UpdatedBy,
	}

	_, err := r.collection(entity.Kind).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), codeIndex) {
				return fmt.Errorf("%s %s: %w", entity.Kind, entity.Code, domain.ErrCodeConflict)
			}
			return fmt.Errorf("%s %s: %w", entity.Kind, entity.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("error inserting entity: %w", err)
	}
	return nil
}

// Save replaces the body and the update stamps of an existing entity
func (r *mongoEntityRepository) Save(ctx context.Context, entity domain.Entity) error {
	update := bson.M{"$set": bson.M{
		"body":      body(entity.Fields),
		"updatedAt": entity.UpdatedAt,
		"updatedBy": entity.UpdatedBy,
	}}

	result, err := r.collection(entity.Kind).UpdateByID(ctx, entity.ID.String(), update)
	if err != nil {
		return fmt.Errorf("error updating entity: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", entity.Kind, entity.ID, domain.ErrEntityNotFound)
	}
	return nil
}

// List returns the entities of kind matching query.Filter
func (r *mongoEntityRepository) List(ctx context.Context, kind domain.EntityKind, query domain.EntityQuery) ([]domain.Entity, error) {
	opts := options.Find().
		SetSort(sortDoc(kind, query.Sort)).
		SetSkip(int64(query.Skip))
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := r.collection(kind).Find(ctx, filterDoc(kind, query.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("error finding entities: %w", err)
	}
	var docs []mongoEntity
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding entities: %w", err)
	}

	entities := make([]domain.Entity, 0, len(docs))
	for _, doc := range docs {
		entity, err := doc.ToDomain(kind)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}

// Count returns the number of entities of kind matching filter
func (r *mongoEntityRepository) Count(ctx context.Context, kind domain.EntityKind, filter domain.Document) (int64, error) {
	total, err := r.collection(kind).CountDocuments(ctx, filterDoc(kind, filter))
	if err != nil {
		return 0, fmt.Errorf("error counting entities: %w", err)
	}
	return total, nil
}

// filterDoc matches the code on the code field of kind and every other key
// inside the body. Nested objects match by containment, arrays must hold
// every listed element.
func filterDoc(kind domain.EntityKind, filter domain.Document) bson.M {
	out := bson.M{}
	for key, value := range filter {
		if field := kind.CodeField(); field != "" && key == field {
			out["code"] = fmt.Sprint(value)
			continue
		}
		flatten("body."+key, native(value), out)
	}
	return out
}

func flatten(path string, value any, out bson.M) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			out[path] = bson.M{"$type": "object"}
			return
		}
		for key, item := range v {
			flatten(path+"."+key, item, out)
		}
	case []any:
		if len(v) == 0 {
			out[path] = bson.M{"$type": "array"}
			return
		}
		out[path] = bson.M{"$all": v}
	default:
		out[path] = v
	}
}

func sortDoc(kind domain.EntityKind, sort []domain.SortField) bson.D {
	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "seq", Value: -1}}
	}
	doc := make(bson.D, 0, len(sort)+1)
	for _, field := range sort {
		direction := 1
		if field.Descending {
			direction = -1
		}
		key := "body." + field.Key
		switch {
		case field.Key == "createdAt", field.Key == "updatedAt":
			key = field.Key
		case field.Key == kind.CodeField() && field.Key != "":
			key = "code"
		}
		doc = append(doc, bson.E{Key: key, Value: direction})
	}
	return append(doc, bson.E{Key: "seq", Value: -1})
}

func body(fields domain.Document) bson.M {
	doc, _ := native(fields).(map[string]any)
	if doc == nil {
		return bson.M{}
	}
	return bson.M(doc)
}

// native converts decoded JSON numbers to bson numbers
func native(value any) any {
	switch v := value.(type) {
	case map[string]any:
		doc := make(map[string]any, len(v))
		for key, item := range v {
			doc[key] = native(item)
		}
		return doc
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = native(item)
		}
		return items
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return value
	}
}

type mongoEntity struct {
	ID        string             `bson:"_id"`
	Seq       primitive.ObjectID `bson:"seq"`
	Code      string             `bson:"code,omitempty"`
	Body      bson.M             `bson:"body"`
	CreatedAt time.Time          `bson:"createdAt"`
	CreatedBy string             `bson:"createdBy"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	UpdatedBy string             `bson:"updatedBy"`
}

func (e mongoEntity) ToDomain(kind domain.EntityKind) (*domain.Entity, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: stored id %q: %w", domain.ErrValidationMismatch, e.ID, err)
	}
	fields, _ := plain(e.Body).(map[string]any)
	if fields == nil {
		fields = domain.Document{}
	}
	return &domain.Entity{
		ID:        id,
		Kind:      kind,
		Code:      e.Code,
		Fields:    fields,
		CreatedAt: e.CreatedAt,
		CreatedBy: e.CreatedBy,
		UpdatedAt: e.UpdatedAt,
		UpdatedBy: e.UpdatedBy,
	}, nil
}

// plain converts decoded bson containers to plain maps and slices
func plain(value any) any {
	switch v := value.(type) {
	case bson.M:
		doc := make(map[string]any, len(v))
		for key, item := range v {
			doc[key] = plain(item)
		}
		return doc
	case map[string]any:
		doc := make(map[string]any, len(v))
		for key, item := range v {
			doc[key] = plain(item)
		}
		return doc
	case bson.D:
		doc := make(map[string]any, len(v))
		for _, elem := range v {
			doc[elem.Key] = plain(elem.Value)
		}
		return doc
	case bson.A:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = plain(item)
		}
		return items
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = plain(item)
		}
		return items
	case int32:
		return int64(v)
	case primitive.DateTime:
		return v.Time().UTC()
	default:
		return value
	}
}
