//go:build integration

package http

import (
	"os"
	"testing"

	"github.com/guttosm/compliance-track/internal/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithMongo(m))
}
