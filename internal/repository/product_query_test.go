package repository

import (
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr(v float64) *float64 { return &v }

func TestProductQuery_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, productQuery(domain.ProductFilter{}))
}

func TestProductQuery_AllFields(t *testing.T) {
	catID := primitive.NewObjectID()
	q := productQuery(domain.ProductFilter{
		Title:      "shirt",
		CategoryID: catID,
		MinPrice:   ptr(10),
		MaxPrice:   ptr(99.5),
	})

	assert.Equal(t, bson.M{"$regex": "shirt", "$options": "i"}, q["pName"])
	assert.Equal(t, catID, q["pCategory"])
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 99.5}, q["pPrice"])
}

func TestProductQuery_EscapesTitle(t *testing.T) {
	q := productQuery(domain.ProductFilter{Title: "a+b (c)"})
	assert.Equal(t, `a\+b \(c\)`, q["pName"].(bson.M)["$regex"])
}

func TestProductQuery_OnlyMinPrice(t *testing.T) {
	q := productQuery(domain.ProductFilter{MinPrice: ptr(0)})
	assert.Equal(t, bson.M{"$gte": 0.0}, q["pPrice"])
	assert.NotContains(t, q, "pName")
	assert.NotContains(t, q, "pCategory")
}

func TestDatabaseName(t *testing.T) {
	name, err := DatabaseName("mongodb://localhost:27017/ecommerce")
	require.NoError(t, err)
	assert.Equal(t, "ecommerce", name)

	name, err = DatabaseName("mongodb://localhost:27017")
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabase, name)

	name, err = DatabaseName("mongodb://user:pw@db1:27017,db2:27017/shop?replicaSet=rs0")
	require.NoError(t, err)
	assert.Equal(t, "shop", name)

	_, err = DatabaseName("postgres://localhost/shop")
	assert.Error(t, err)
}

func TestMigrationURL(t *testing.T) {
	got, err := migrationURL("mongodb://localhost:27017")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/"+DefaultDatabase+"?x-migrations-collection=schema_migrations", got)

	got, err = migrationURL("mongodb://user:pw@db1:27017,db2:27017/shop?replicaSet=rs0")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://user:pw@db1:27017,db2:27017/shop?replicaSet=rs0&x-migrations-collection=schema_migrations", got)
}
