package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

// mongoDocument is the stored shape; field names match the collections
// written by earlier uploads so existing data stays searchable.
type mongoDocument struct {
	FileName       string    `bson:"file_name"`
	Language       string    `bson:"language"`
	RawText        string    `bson:"raw_text"`
	StructuredJSON string    `bson:"structured_json"`
	Method         string    `bson:"method,omitempty"`
	IndexedAt      time.Time `bson:"indexed_at,omitempty"`
}

func toMongoDocument(e entity.CatalogueEntry) mongoDocument {
	return mongoDocument{
		FileName:       e.FileName,
		Language:       e.Language,
		RawText:        e.RawText,
		StructuredJSON: e.Payload,
		Method:         string(e.Method),
		IndexedAt:      indexedAt(e),
	}
}

// MongoStore is a document-shaped store backed by a collection with a text
// index on raw_text.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewMongoStore(ctx context.Context, cfg common.MongoConfig, logger *slog.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storeErr(BackendMongo, "connect", err)
	}
	s := &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		logger: logger,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "raw_text", Value: "text"}},
	})
	if err != nil {
		return storeErr(BackendMongo, "create text index", err)
	}
	// Collections filled by plain inserts may hold duplicate file names; the
	// store still works without the unique index, upserts just match the first.
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "file_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		s.logger.Warn("store.mongo.unique_index_skipped", "error", err)
	}
	return nil
}

func (s *MongoStore) Shape() Shape { return ShapeDocument }

// Index upserts the document for entry.FileName.
func (s *MongoStore) Index(ctx context.Context, entry entity.CatalogueEntry) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"file_name": entry.FileName},
		toMongoDocument(entry),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		s.logger.Error("store.index.failed", "file", entry.FileName, "error", err)
		return storeErr(BackendMongo, "index", err)
	}
	s.logger.Debug("store.index.ok", "file", entry.FileName)
	return nil
}

// Replace upserts every entry with one bulk write.
func (s *MongoStore) Replace(ctx context.Context, entries []entity.CatalogueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"file_name": e.FileName}).
			SetReplacement(toMongoDocument(e)).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		s.logger.Error("store.replace.failed", "entries", len(entries), "error", err)
		return storeErr(BackendMongo, "replace", err)
	}
	s.logger.Info("store.replace.ok", "entries", len(entries))
	return nil
}

func (s *MongoStore) CandidateSearch(ctx context.Context, query string) ([]Candidate, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "file_name": 1, "structured_json": 1}).
		SetLimit(CandidateLimit)
	cur, err := s.coll.Find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
	if err != nil {
		return nil, storeErr(BackendMongo, "search", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []Candidate
	for cur.Next(ctx) {
		var doc mongoDocument
		if err := cur.Decode(&doc); err != nil {
			// A payload stored with another type cannot be decoded; skip it
			// like any other undecodable payload.
			s.logger.Warn("store.mongo.skip_document", "error", err)
			continue
		}
		out = append(out, Candidate{FileName: doc.FileName, Payload: doc.StructuredJSON})
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr(BackendMongo, "search", err)
	}
	return out, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return storeErr(BackendMongo, "ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return storeErr(BackendMongo, "close", s.client.Disconnect(ctx))
}
