package gallery

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/dailyart/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "dailyart"
	DefaultMongoCollection = "gallery"
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps gallery entries in a MongoDB collection with a unique
// index on date.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// mongoEntry is the stored document shape. IDs are kept as strings so the
// documents stay readable from the mongo shell.
type mongoEntry struct {
	ID        string    `bson:"_id"`
	Date      string    `bson:"date"`
	Seed      string    `bson:"seed"`
	Palette   string    `bson:"palette"`
	Style     string    `bson:"style"`
	Width     int       `bson:"width"`
	Height    int       `bson:"height"`
	Format    string    `bson:"format"`
	Path      string    `bson:"path"`
	Thumb     string    `bson:"thumb,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoStore connects, pings, and ensures the date index exists.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create date index")
	}
	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

// Put upserts the entry for e.Date.
func (s *MongoStore) Put(ctx context.Context, e Entry) error {
	e, err := prepare(e, s.now())
	if err != nil {
		return err
	}
	doc := toMongo(e)

	// _id is immutable, so a replacement must carry the stored id.
	var existing mongoEntry
	err = s.coll.FindOne(ctx, bson.M{"date": e.Date}).Decode(&existing)
	switch {
	case err == nil:
		doc.ID = existing.ID
	case !stderrors.Is(err, mongo.ErrNoDocuments):
		return errors.Wrap(errors.ErrCodeStorage, err, "look up %s", e.Date)
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"date": e.Date}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "upsert %s", e.Date)
	}
	return nil
}

// Get returns the entry for date.
func (s *MongoStore) Get(ctx context.Context, date string) (Entry, error) {
	var doc mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"date": date}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, notFound(date)
	}
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStorage, err, "find %s", date)
	}
	return fromMongo(doc), nil
}

// List returns every entry ordered by date.
func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list gallery")
	}
	var docs []mongoEntry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode gallery")
	}
	out := make([]Entry, len(docs))
	for i, d := range docs {
		out[i] = fromMongo(d)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toMongo(e Entry) mongoEntry {
	return mongoEntry{
		ID:        e.ID.String(),
		Date:      e.Date,
		Seed:      e.Seed,
		Palette:   e.Palette,
		Style:     e.Style,
		Width:     e.Width,
		Height:    e.Height,
		Format:    e.Format,
		Path:      e.Path,
		Thumb:     e.Thumb,
		CreatedAt: e.CreatedAt,
	}
}

func fromMongo(d mongoEntry) Entry {
	id, _ := uuid.Parse(d.ID)
	return Entry{
		ID:        id,
		Date:      d.Date,
		Seed:      d.Seed,
		Palette:   d.Palette,
		Style:     d.Style,
		Width:     d.Width,
		Height:    d.Height,
		Format:    d.Format,
		Path:      d.Path,
		Thumb:     d.Thumb,
		CreatedAt: d.CreatedAt,
	}
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
