// Package repository provides MongoDB persistence for the catalog, accounts and activity logs.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	collChemicals   = "chemicals"
	collRegulations = "regulations"
	collLogs        = "logs"
	collUsers       = "users"
	collRoles       = "roles"
	collPermissions = "permissions"
	collTokens      = "tokens"
)

// logsTTLIndex names the expiry index on logs.timestamp so SetLogsTTL can replace it.
const logsTTLIndex = "logs_ttl"

// MongoConfig tunes the client connection pool.
type MongoConfig struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	// Compressors lists wire compressors in preference order. Empty disables compression.
	Compressors []string
}

// DefaultMongoConfig returns the pool settings used in production.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		MaxPoolSize:            50,
		MinPoolSize:            5,
		MaxConnIdleTime:        10 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          30 * time.Second,
		Compressors:            []string{"zstd", "snappy", "zlib"},
	}
}

func (c MongoConfig) clientOptions(uri string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(c.MaxPoolSize).
		SetMinPoolSize(c.MinPoolSize).
		SetMaxConnIdleTime(c.MaxConnIdleTime).
		SetConnectTimeout(c.ConnectTimeout).
		SetServerSelectionTimeout(c.ServerSelectionTimeout).
		SetSocketTimeout(c.SocketTimeout).
		SetRetryReads(true).
		SetRetryWrites(true)
	if len(c.Compressors) > 0 {
		opts.SetCompressors(c.Compressors)
	}
	return opts
}

// MongoDB holds the client and the service's collections.
type MongoDB struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Chemicals   *mongo.Collection
	Regulations *mongo.Collection
	Logs        *mongo.Collection
	Users       *mongo.Collection
	Roles       *mongo.Collection
	Permissions *mongo.Collection
	Tokens      *mongo.Collection
}

// NewMongoDB connects with DefaultMongoConfig.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return NewMongoDBWithConfig(uri, databaseName, DefaultMongoConfig())
}

// NewMongoDBWithConfig connects, pings and ensures the indexes the repositories rely on.
func NewMongoDBWithConfig(uri, databaseName string, cfg MongoConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:      client,
		Database:    db,
		Chemicals:   db.Collection(collChemicals),
		Regulations: db.Collection(collRegulations),
		Logs:        db.Collection(collLogs),
		Users:       db.Collection(collUsers),
		Roles:       db.Collection(collRoles),
		Permissions: db.Collection(collPermissions),
		Tokens:      db.Collection(collTokens),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

type indexSpec struct {
	coll  *mongo.Collection
	model mongo.IndexModel
	// required indexes back a uniqueness rule; failing to build one aborts startup.
	required bool
}

func keys(fields ...string) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		order := 1
		if f[0] == '-' {
			f, order = f[1:], -1
		}
		d = append(d, bson.E{Key: f, Value: order})
	}
	return d
}

func unique() *options.IndexOptions {
	return options.Index().SetUnique(true)
}

func (m *MongoDB) indexPlan() []indexSpec {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}
	return []indexSpec{
		{m.Chemicals, mongo.IndexModel{Keys: keys("name"), Options: unique().SetCollation(caseInsensitive)}, true},
		{m.Chemicals, mongo.IndexModel{Keys: keys("cas_number")}, false},
		{m.Chemicals, mongo.IndexModel{Keys: keys("limits.regulation_id")}, false},
		{m.Chemicals, mongo.IndexModel{Keys: keys("status")}, false},
		{m.Regulations, mongo.IndexModel{Keys: keys("country", "name")}, false},
		{m.Regulations, mongo.IndexModel{Keys: keys("featured")}, false},
		{m.Logs, mongo.IndexModel{Keys: keys("request_id")}, false},
		{m.Logs, mongo.IndexModel{Keys: keys("action_type", "-timestamp")}, false},
		{m.Logs, mongo.IndexModel{Keys: keys("user_id", "-timestamp")}, false},
		{m.Users, mongo.IndexModel{Keys: keys("email"), Options: unique()}, true},
		{m.Users, mongo.IndexModel{Keys: keys("username"), Options: unique()}, true},
		{m.Roles, mongo.IndexModel{Keys: keys("name"), Options: unique()}, true},
		{m.Permissions, mongo.IndexModel{Keys: keys("resource", "action"), Options: unique()}, true},
		{m.Tokens, mongo.IndexModel{Keys: keys("token"), Options: unique()}, true},
		{m.Tokens, mongo.IndexModel{Keys: keys("user_id", "type")}, false},
		// expire each token document at its own expires_at
		{m.Tokens, mongo.IndexModel{Keys: keys("expires_at"), Options: options.Index().SetExpireAfterSeconds(0)}, false},
	}
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	for _, spec := range m.indexPlan() {
		if _, err := spec.coll.Indexes().CreateOne(ctx, spec.model); err != nil && spec.required {
			return fmt.Errorf("create index on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

// SetLogsTTL replaces the expiry index on log timestamps. Non-positive days keep logs forever.
func (m *MongoDB) SetLogsTTL(ctx context.Context, ttlDays int) error {
	// the index may not exist yet
	_, _ = m.Logs.Indexes().DropOne(ctx, logsTTLIndex)
	if ttlDays <= 0 {
		return nil
	}

	ttl := mongo.IndexModel{
		Keys:    keys("timestamp"),
		Options: options.Index().SetName(logsTTLIndex).SetExpireAfterSeconds(int32(ttlDays * 24 * 60 * 60)),
	}
	if _, err := m.Logs.Indexes().CreateOne(ctx, ttl); err != nil {
		return fmt.Errorf("create logs ttl index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the server with a two second budget.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
