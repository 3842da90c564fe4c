// Package mongostore implements store.Store on MongoDB. Uniqueness of user
// emails, applications per athlete and tournament, and winner positions per
// tournament is enforced by unique indexes.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"sports-platform/internal/store"
)

const (
	colUsers        = "users"
	colInstitutions = "institutions"
	colTournaments  = "tournaments"
	colApplications = "applications"
	colSponsorships = "sponsorships"
	colWinners      = "winners"
	colCouncil      = "council_members"
)

// Connect dials MongoDB and retries the initial ping for up to 30 seconds.
func Connect(ctx context.Context, uri string, log zerolog.Logger) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetMaxPoolSize(20)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	for {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = client.Ping(pctx, readpref.Primary())
		cancel()
		if err == nil {
			return client, nil
		}
		if time.Now().After(deadline) {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo ping after retries: %w", err)
		}
		log.Warn().Err(err).Msg("mongo not ready, retrying")
		select {
		case <-ctx.Done():
			_ = client.Disconnect(context.Background())
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// New builds the repositories on database name and ensures indexes.
func New(ctx context.Context, client *mongo.Client, name string) (*store.Store, error) {
	db := client.Database(name)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}
	now := func() time.Time { return time.Now().UTC() }
	return &store.Store{
		Users:        &users{c: db.Collection(colUsers), now: now},
		Institutions: &institutions{c: db.Collection(colInstitutions), now: now},
		Tournaments:  &tournaments{c: db.Collection(colTournaments), now: now},
		Applications: &applications{c: db.Collection(colApplications), now: now},
		Sponsorships: &sponsorships{c: db.Collection(colSponsorships), now: now},
		Winners:      &winners{c: db.Collection(colWinners), now: now},
		Council:      &council{c: db.Collection(colCouncil), now: now},
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "institute_id", Value: 1}}},
		},
		colApplications: {
			{Keys: bson.D{{Key: "athlete", Value: 1}, {Key: "tournament", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "tournament", Value: 1}, {Key: "status", Value: 1}}},
		},
		colSponsorships: {
			{Keys: bson.D{{Key: "athlete", Value: 1}}},
			{Keys: bson.D{{Key: "sponsor", Value: 1}}},
		},
		colWinners: {
			{Keys: bson.D{{Key: "tournament", Value: 1}, {Key: "position", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", col, err)
		}
	}
	return nil
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})

func insert(ctx context.Context, c *mongo.Collection, doc any) error {
	if _, err := c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter any) (*T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// updateByID applies $set and returns the updated document.
func updateByID[T any](ctx context.Context, c *mongo.Collection, id store.ID, set bson.M) (*T, error) {
	if len(set) == 0 {
		return findOne[T](ctx, c, bson.M{"_id": id})
	}
	var out T
	err := c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, store.ErrConflict
	case err != nil:
		return nil, err
	}
	return &out, nil
}

func deleteByID(ctx context.Context, c *mongo.Collection, id store.ID) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func inIDs(ids []store.ID) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}
