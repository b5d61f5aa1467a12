package postgis

import (
	"context"
	"os"
	"testing"

	"github.com/1F47E/geo-index-quadtree/pkg/config"
	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := config.Default()
	cfg.PostGIS.Host = "db"
	cfg.PostGIS.Port = 6543
	cfg.PostGIS.User = "geo"
	cfg.PostGIS.Password = "secret"
	cfg.PostGIS.Database = "places"

	assert.Equal(t, "host=db port=6543 user=geo password=secret dbname=places sslmode=disable", DSN(cfg))
}

// TestRoundTrip needs a running PostGIS; set POSTGIS_TEST=1 to enable it.
func TestRoundTrip(t *testing.T) {
	if os.Getenv("POSTGIS_TEST") == "" {
		t.Skip("POSTGIS_TEST not set")
	}
	ctx := context.Background()

	index, err := New(ctx, config.Default())
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.InitSchema(ctx))
	places := []*models.Place{
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Hotel}), 10, 10),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Coffee, models.ATM}), 20, 20),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Coffee}), 500, 500),
	}
	require.NoError(t, index.BulkInsertPlaces(ctx, places))
	require.NoError(t, index.CreateSpatialIndex(ctx))

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	rng := geo.NewRectangle(15, 15, 10, 10)
	found, err := index.QueryBox(ctx, rng, models.AnyService, 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = index.QueryBox(ctx, rng, models.Coffee, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].At(20, 20))

	found, err = index.QueryBox(ctx, rng, models.AnyService, 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}
