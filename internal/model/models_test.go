package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_SalePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount float64
		want     float64
	}{
		{"twenty percent off", 1000, 20, 800},
		{"no discount", 49.99, 0, 49.99},
		{"full discount", 100, 100, 0},
		{"half off", 19.98, 50, 9.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: tt.price, Discount: tt.discount}
			assert.InDelta(t, tt.want, p.SalePrice(), 0.001)
		})
	}
}

func TestProduct_MarshalJSON_IncludesSalePrice(t *testing.T) {
	p := Product{ID: "prod-1", Name: "Widget", Price: 1000, Discount: 20}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 800.0, decoded["salePrice"])
	assert.Equal(t, 1000.0, decoded["price"])
}

func TestProduct_MarshalJSON_HidesRaters(t *testing.T) {
	p := Product{ID: "prod-1", RatedBy: []string{"user-1"}}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "ratedBy")
	assert.NotContains(t, decoded, "RatedBy")
}

func TestUser_MarshalJSON_HidesPasswordHash(t *testing.T) {
	u := User{ID: "user-1", Username: "alice", PasswordHash: "bcrypt-hash"}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "bcrypt-hash")
}
