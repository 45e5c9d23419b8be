// File: store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"athmageeth-portal/logger"
	"athmageeth-portal/models"
)

// WhatsappIndexName names the unique index that guards against duplicate
// registrations.
const WhatsappIndexName = "whatsappNumber_unique"

// MongoStore keeps registrations in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	logger.Info.Printf("[NewMongoStore] connected to database=%s collection=%s", database, collection)
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Insert writes reg as a single document.
func (s *MongoStore) Insert(ctx context.Context, reg models.Registration) error {
	if _, err := s.coll.InsertOne(ctx, reg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting registration: %w", err)
	}
	return nil
}

// FindByWhatsappNumber returns ErrNotFound when no document uses number.
func (s *MongoStore) FindByWhatsappNumber(ctx context.Context, number string) (models.Registration, error) {
	var reg models.Registration
	err := s.coll.FindOne(ctx, bson.M{"whatsappNumber": number}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Registration{}, ErrNotFound
	}
	if err != nil {
		return models.Registration{}, fmt.Errorf("finding registration by whatsapp number: %w", err)
	}
	return reg, nil
}

// Find returns matching documents newest first. A limit of zero or less
// means no limit.
func (s *MongoStore) Find(ctx context.Context, f Filter, skip, limit int64) ([]models.Registration, error) {
	opts := options.Find().SetSort(newestFirst)
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, queryDocument(f), opts)
	if err != nil {
		return nil, fmt.Errorf("finding registrations: %w", err)
	}
	out := []models.Registration{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding registrations: %w", err)
	}
	return out, nil
}

// Count returns how many documents match f.
func (s *MongoStore) Count(ctx context.Context, f Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, queryDocument(f))
	if err != nil {
		return 0, fmt.Errorf("counting registrations: %w", err)
	}
	return n, nil
}

// Delete removes the document with id. Records created before ids were
// UUID strings carry an ObjectID, so a hex id matches either form.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("deleting registration %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		logger.Debug.Printf("[MongoStore.Delete] id=%s matched no document", id)
	}
	return nil
}

// Stats runs the dashboard aggregations.
func (s *MongoStore) Stats(ctx context.Context, topDistricts int) (models.DashboardStats, error) {
	stats := models.DashboardStats{DistrictStats: []models.DistrictCount{}}

	total, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("counting teams: %w", err)
	}
	stats.TotalTeams = total

	cursor, err := s.coll.Aggregate(ctx, candidateTotalPipeline())
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("aggregating candidates: %w", err)
	}
	var totals []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return models.DashboardStats{}, fmt.Errorf("decoding candidate total: %w", err)
	}
	if len(totals) > 0 {
		stats.TotalCandidates = totals[0].Total
	}

	cursor, err = s.coll.Aggregate(ctx, districtPipeline(topDistricts))
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("aggregating districts: %w", err)
	}
	if err := cursor.All(ctx, &stats.DistrictStats); err != nil {
		return models.DashboardStats{}, fmt.Errorf("decoding district breakdown: %w", err)
	}
	return stats, nil
}

// EnsureIndexes creates the unique WhatsApp index and the lookup indexes.
// It fails with ErrNoUniqueIndex when the collection ends up without a
// unique index on whatsappNumber, for example because stored records already
// share a number. A failed lookup index is only logged.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "whatsappNumber", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(WhatsappIndexName),
	})
	if err != nil {
		specs, listErr := s.coll.Indexes().ListSpecifications(ctx)
		if listErr != nil {
			return fmt.Errorf("creating unique index: %w (listing indexes: %v)", err, listErr)
		}
		if !hasUniqueIndex(specs, "whatsappNumber") {
			return fmt.Errorf("%w: %v", ErrNoUniqueIndex, err)
		}
		logger.Warn.Printf("[MongoStore.EnsureIndexes] keeping existing unique whatsappNumber index: %v", err)
	}

	names, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "institutionName", Value: 1}}},
		{Keys: bson.D{{Key: "district", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		logger.Warn.Printf("[MongoStore.EnsureIndexes] lookup indexes not created: %v", err)
		return nil
	}
	logger.Info.Printf("[MongoStore.EnsureIndexes] indexes ready: %s + %v", WhatsappIndexName, names)
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ------------------- query documents -------------------

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// queryDocument is the Mongo form of Filter.matches. The user query is
// escaped so it always matches as a literal substring.
func queryDocument(f Filter) bson.M {
	doc := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		doc["$or"] = bson.A{
			bson.M{"institutionName": re},
			bson.M{"candidates.name": re},
			bson.M{"district": re},
			bson.M{"whatsappNumber": re},
			bson.M{"place": re},
		}
	}
	if f.District != "" {
		doc["district"] = f.District
	}
	return doc
}

// hasUniqueIndex reports whether specs contain a unique index keyed on field
// alone.
func hasUniqueIndex(specs []*mongo.IndexSpecification, field string) bool {
	for _, spec := range specs {
		if spec == nil || spec.Unique == nil || !*spec.Unique {
			continue
		}
		keys, err := spec.KeysDocument.Elements()
		if err != nil || len(keys) != 1 {
			continue
		}
		if keys[0].Key() == field {
			return true
		}
	}
	return false
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func candidateTotalPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "candidateCount", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$candidates", bson.A{}}},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$candidateCount"}}},
		}}},
	}
}

func districtPipeline(top int) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$district"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if top > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: top}})
	}
	return p
}
