package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const PessoasCollection = "pessoas"

type personDocument struct {
	ID        string   `bson:"_id"`
	Name      string   `bson:"name"`
	Nickname  string   `bson:"nickname"`
	BirthDate Date     `bson:"birth_date"`
	Stacks    []string `bson:"stacks"`
}

func newPersonDocument(p *Person) personDocument {
	return personDocument{
		ID:        p.ID.String(),
		Name:      p.Name,
		Nickname:  p.Nickname,
		BirthDate: p.BirthDate,
		Stacks:    p.Stacks,
	}
}

func (d personDocument) person() (*Person, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("document _id %q: %w", d.ID, err)
	}

	return &Person{
		ID:        id,
		Name:      d.Name,
		Nickname:  d.Nickname,
		BirthDate: d.BirthDate,
		Stacks:    d.Stacks,
	}, nil
}

// MongoStore keeps one document per person in a single collection, keyed
// by the canonical string form of the id.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// EnsureIndexes creates the indexes used by Search. They are not unique.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "nickname", Value: 1}}},
		{Keys: bson.D{{Key: "stacks", Value: 1}}},
	}

	if _, err := s.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes on %s: %w", s.collection.Name(), err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, person *Person) error {
	if _, err := s.collection.InsertOne(ctx, newPersonDocument(person)); err != nil {
		return fmt.Errorf("insert pessoa %s: %w", person.ID, err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	var doc personDocument

	err := s.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find pessoa %s: %w", id, err)
	}

	return doc.person()
}

func (s *MongoStore) Search(ctx context.Context, term string) ([]Person, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"nickname": pattern},
		bson.M{"stacks": pattern},
	}}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search pessoas: %w", err)
	}
	defer cursor.Close(ctx)

	pessoas := []Person{}
	for cursor.Next(ctx) {
		var doc personDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("search pessoas: %w", err)
		}

		person, err := doc.person()
		if err != nil {
			return nil, fmt.Errorf("search pessoas: %w", err)
		}
		pessoas = append(pessoas, *person)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("search pessoas: %w", err)
	}

	return pessoas, nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count pessoas: %w", err)
	}
	return count, nil
}
