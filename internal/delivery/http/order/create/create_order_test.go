package create

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tCases := []struct {
		name  string
		input *CreateOrderRequest
	}{
		{
			name:  "single_item",
			input: &CreateOrderRequest{Items: []Item{{ProductID: 3, Quantity: 2}}},
		},
		{
			name: "several_items",
			input: &CreateOrderRequest{Items: []Item{
				{ProductID: 1, Quantity: 1},
				{ProductID: 2, Quantity: 40},
			}},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			err := tCase.input.validate()
			require.NoError(t, err)
		})
	}
}

func TestValidateError(t *testing.T) {
	tCases := []struct {
		name   string
		input  *CreateOrderRequest
		expErr error
	}{
		{
			name:   "no_items",
			input:  &CreateOrderRequest{},
			expErr: errEmptyItems,
		},
		{
			name:   "empty_items",
			input:  &CreateOrderRequest{Items: []Item{}},
			expErr: errEmptyItems,
		},
		{
			name:   "bad_product_id",
			input:  &CreateOrderRequest{Items: []Item{{ProductID: 0, Quantity: 1}}},
			expErr: errInvalidProductID,
		},
		{
			name:   "zero_quantity",
			input:  &CreateOrderRequest{Items: []Item{{ProductID: 3, Quantity: 0}}},
			expErr: errInvalidQuantity,
		},
		{
			name: "negative_quantity_in_second_item",
			input: &CreateOrderRequest{Items: []Item{
				{ProductID: 3, Quantity: 1},
				{ProductID: 4, Quantity: -2},
			}},
			expErr: errInvalidQuantity,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			err := tCase.input.validate()
			require.Error(t, err)
			require.EqualError(t, tCase.expErr, err.Error())
		})
	}
}
