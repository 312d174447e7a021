package csv_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/dataset/csv"
	"github.com/pbanos/sapling/feature"
)

var shapeFeatures = []feature.Feature{
	feature.NewContinuousFeature("corners"),
	feature.NewDiscreteFeature("color", []string{"red", "blue"}),
}

func TestReadDataset(t *testing.T) {
	ctx := context.Background()
	input := "color,corners,file,shape\n" +
		"red,4,img/1.png,square\n" +
		"blue,0,img/2.png,circle\n"
	ds, err := csv.ReadDataset(strings.NewReader(input), shapeFeatures)
	require.NoError(t, err)

	rows, err := ds.Rows(ctx)
	require.NoError(t, err)
	require.Equal(t, []dataset.Row{
		{4.0, "red", "img/1.png", "square"},
		{0.0, "blue", "img/2.png", "circle"},
	}, rows)
}

func TestReadDatasetRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"missing label":    "corners,color,file\n4,red,a\n",
		"unknown column":   "corners,size,file,label\n4,big,a,square\n",
		"duplicate column": "corners,corners,file,label\n4,4,a,square\n",
		"not a number":     "corners,color,file,label\nfour,red,a,square\n",
		"unknown value":    "corners,color,file,label\n4,green,a,square\n",
		"short row":        "corners,color,file,label\n4,red,a\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := csv.ReadDataset(strings.NewReader(input), shapeFeatures)
			assert.Error(t, err)
		})
	}
}

func TestReadDatasetRejectsNonFiniteNumbers(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		input := "corners,color,file,label\n4,red,a,square\n" + v + ",blue,b,circle\n"
		_, err := csv.ReadDataset(strings.NewReader(input), shapeFeatures)
		var sme *feature.SchemaMismatchError
		require.ErrorAs(t, err, &sme, v)
		assert.Equal(t, 1, sme.Row, v)
		assert.Equal(t, 0, sme.Column, v)
	}
}

func TestReadRowsStops(t *testing.T) {
	input := "corners,color,file,label\n4,red,a,square\n0,blue,b,circle\n3,red,c,triangle\n"
	var seen []string
	err := csv.ReadRows(strings.NewReader(input), shapeFeatures, func(i int, r dataset.Row) (bool, error) {
		seen = append(seen, r.ID())
		return i < 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestWriteDataset(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New([]dataset.Row{
		dataset.NewRow(4, "red", "a", "square"),
		dataset.NewRow(2.5, "blue", "b", "circle"),
	})
	buf := &bytes.Buffer{}
	require.NoError(t, csv.WriteDataset(ctx, buf, ds, shapeFeatures))
	assert.Equal(t, "corners,color,id,label\n4,red,a,square\n2.5,blue,b,circle\n", buf.String())

	read, err := csv.ReadDataset(buf, shapeFeatures)
	require.NoError(t, err)
	rows, err := read.Rows(ctx)
	require.NoError(t, err)
	original, err := ds.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, rows)
}

func TestWriterRejectsWrongWidth(t *testing.T) {
	w, err := csv.NewWriter(&bytes.Buffer{}, shapeFeatures)
	require.NoError(t, err)
	n, err := w.Write(context.Background(), []dataset.Row{dataset.NewRow(4, "a", "square")})
	require.Error(t, err)
	var sme *feature.SchemaMismatchError
	assert.ErrorAs(t, err, &sme)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, w.Count())
}
