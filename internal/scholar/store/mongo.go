// Package store persists the scholarship corpus and per-user status records
// in MongoDB, one document per scholarship keyed by the stable id.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	scholarshipsColl = "scholarships"
	userStatusColl   = "user_scholarships"
	appConfigColl    = "config"
)

type Stores struct {
	DB           *mongo.Database
	Scholarships *mongo.Collection
	UserStatus   *mongo.Collection
	AppConfig    *mongo.Collection
}

func MustMongo(ctx context.Context, host, dbname, username, password, authSource string) *Stores {
	clientOpts := options.Client().
		ApplyURI("mongodb://" + host).
		SetAuth(options.Credential{
			Username:   username,
			Password:   password,
			AuthSource: authSource,
		})

	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		panic(err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		panic(err)
	}

	db := cli.Database(dbname)
	s := &Stores{
		DB:           db,
		Scholarships: db.Collection(scholarshipsColl),
		UserStatus:   db.Collection(userStatusColl),
		AppConfig:    db.Collection(appConfigColl),
	}
	ensureIndexes(ctx, s)
	return s
}

func ensureIndexes(ctx context.Context, s *Stores) {
	// scholarships: name-ordered pagination plus per-source and stale lookups
	_, _ = s.Scholarships.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "university_id", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: 1}}},
	})
	// user_scholarships: one record per (user, scholarship) pair
	unique := true
	_, _ = s.UserStatus.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "scholarship_id", Value: 1}},
			Options: &options.IndexOptions{Unique: &unique},
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
	})
}
