//go:build integration

package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseName(t *testing.T) {
	a := DatabaseName("TestAccounts_Integration/register signs the new user in")
	b := DatabaseName("TestAccounts_Integration/register signs the new user in")

	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(a), 49)
	assert.True(t, strings.HasPrefix(a, "testaccounts_integration_register_signs"))
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, " ")
}

func TestMongoURI_WithoutContainer(t *testing.T) {
	assert.Panics(t, func() { _ = MongoURI() })
}
