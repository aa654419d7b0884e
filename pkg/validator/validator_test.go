package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type createPayload struct {
	Name  string   `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&createPayload{})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)
	require.Equal(t, "name", failures[0].Field)
	require.Equal(t, "price", failures[1].Field)
}

func TestValidateStructAcceptsZeroPrice(t *testing.T) {
	price := 0.0
	require.NoError(t, ValidateStruct(&createPayload{Name: "Widget", Price: &price}))
}

func TestValidateStructRejectsNegativePrice(t *testing.T) {
	price := -1.0
	err := ValidateStruct(&createPayload{Name: "Widget", Price: &price})
	require.Error(t, err)

	failures := err.(ValidationErrors)
	require.Equal(t, "gte", failures[0].Tag)
}
