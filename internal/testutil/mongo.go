//go:build integration

// Package testutil starts the MongoDB container shared by the integration tests of a package.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const mongoImage = "mongo:7.0"

// Mongo is a running MongoDB container.
type Mongo struct {
	container *mongodb.MongoDBContainer
	URI       string
}

// StartMongo runs a fresh container. Terminate it when done.
func StartMongo(ctx context.Context) (*Mongo, error) {
	c, err := mongodb.Run(ctx, mongoImage)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", mongoImage, err)
	}
	uri, err := c.ConnectionString(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("connection string: %w", err)
	}
	return &Mongo{container: c, URI: uri}, nil
}

// Terminate stops and removes the container.
func (m *Mongo) Terminate(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Terminate(ctx)
}

var (
	sharedMu sync.RWMutex
	shared   *Mongo
)

// RunWithMongo starts the package's shared container, runs the tests and removes the
// container. Use it from TestMain:
//
//	func TestMain(m *testing.M) { os.Exit(testutil.RunWithMongo(m)) }
func RunWithMongo(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	mongo, err := StartMongo(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "integration tests need docker:", err)
		return 1
	}

	sharedMu.Lock()
	shared = mongo
	sharedMu.Unlock()

	code := m.Run()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mongo.Terminate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mongodb container left behind:", err)
	}
	return code
}

// MongoURI returns the shared container's URI. It panics outside RunWithMongo.
func MongoURI() string {
	sharedMu.RLock()
	defer sharedMu.RUnlock()
	if shared == nil {
		panic("testutil: MongoURI called without RunWithMongo in TestMain")
	}
	return shared.URI
}

// DatabaseName derives a database name from a test name that is unique per call, so
// parallel tests sharing a container never see each other's data.
func DatabaseName(testName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, testName)
	if len(name) > 40 {
		name = name[:40]
	}
	suffix := ulid.Make().String()
	return name + "_" + strings.ToLower(suffix[len(suffix)-8:])
}
