package get

import (
	"errors"
	"strconv"
)

var errInvalidOrderID = errors.New("invalid order id")

type OrderByIDRequest struct {
	ID string
}

func (r *OrderByIDRequest) validate() error {
	id, err := strconv.ParseInt(r.ID, 10, 64)
	if err != nil || id <= 0 {
		return errInvalidOrderID
	}

	return nil
}

func (r *OrderByIDRequest) toServiceRepresentation() int64 {
	id, _ := strconv.ParseInt(r.ID, 10, 64)
	return id
}
