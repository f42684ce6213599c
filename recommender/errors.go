package recommender

import "fmt"

// OutOfRangeError is returned when an item id has no entry in the price list.
type OutOfRangeError struct {
	Item     int
	NumItems int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("item %d out of range [0, %d)", e.Item, e.NumItems)
}
