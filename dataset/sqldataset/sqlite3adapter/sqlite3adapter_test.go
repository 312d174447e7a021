package sqlite3adapter_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/dataset/sqldataset"
	"github.com/pbanos/sapling/dataset/sqldataset/sqlite3adapter"
	"github.com/pbanos/sapling/feature"
)

var shapeFeatures = []feature.Feature{
	feature.NewContinuousFeature("corners"),
	feature.NewDiscreteFeature("color", nil),
}

func openAdapter(t *testing.T) sqldataset.Adapter {
	a, err := sqlite3adapter.New(filepath.Join(t.TempDir(), "shapes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	if err = a.DB().Ping(); err != nil && strings.Contains(err.Error(), "CGO_ENABLED") {
		t.Skipf("sqlite3 driver unavailable: %v", err)
	}
	require.NoError(t, err)
	return a
}

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	a := openAdapter(t)
	rows := []dataset.Row{
		dataset.NewRow(4, "red", "img/1.png", "square"),
		dataset.NewRow(0, "blue", "img/2.png", "circle"),
		dataset.NewRow(3, "red", "img/3.png", "triangle"),
	}
	n, err := sqldataset.Write(ctx, a, dataset.New(rows), shapeFeatures)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ds, err := sqldataset.Read(ctx, a, shapeFeatures)
	require.NoError(t, err)
	read, err := ds.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, read)
}

func TestReservedFeatureName(t *testing.T) {
	a := openAdapter(t)
	_, err := sqldataset.Read(context.Background(), a, []feature.Feature{feature.NewContinuousFeature("label")})
	assert.Error(t, err)
}

func TestColumnName(t *testing.T) {
	a := openAdapter(t)
	c, err := a.ColumnName("corners")
	require.NoError(t, err)
	assert.Equal(t, `"corners"`, c)
	_, err = a.ColumnName(`bad"name`)
	assert.Error(t, err)
}
