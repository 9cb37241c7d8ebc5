package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbari-org/dettrackd/internal/catalog"
)

type fakeGateway struct {
	keys []string
	err  error
}

func (f *fakeGateway) List(ctx context.Context, prefix string) ([]string, error) {
	return f.keys, f.err
}

func (f *fakeGateway) URI(key string) string {
	return fmt.Sprintf("s3://bucket/%s", key)
}

func TestRefreshFiltersToRecognisedExtensions(t *testing.T) {
	gw := &fakeGateway{keys: []string{"models/a.pt", "models/b.gz", "models/README.md"}}
	c := catalog.New(gw, "models")

	require.NoError(t, c.Refresh(context.Background()))
	assert.ElementsMatch(t, []string{"a.pt", "b.gz"}, c.Names())
}

func TestLookupResolvesURI(t *testing.T) {
	gw := &fakeGateway{keys: []string{"models/a.pt"}}
	c := catalog.New(gw, "models")
	require.NoError(t, c.Refresh(context.Background()))

	uri, ok := c.Lookup("a.pt")
	require.True(t, ok)
	assert.Equal(t, "s3://bucket/models/a.pt", uri)

	_, ok = c.Lookup("missing.pt")
	assert.False(t, ok)
}

func TestEmptyBeforeRefresh(t *testing.T) {
	c := catalog.New(&fakeGateway{}, "models")
	assert.True(t, c.Empty())
}

func TestRefreshPropagatesGatewayError(t *testing.T) {
	gw := &fakeGateway{err: assert.AnError}
	c := catalog.New(gw, "models")
	assert.Error(t, c.Refresh(context.Background()))
}
