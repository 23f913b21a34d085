package response

import (
	"strings"

	"bmxfeed/internal/errors"
)

// Row is one record of a table frame.
type Row[T any] struct {
	Table  string
	Action Action
	Data   T
}

// tableFrame is the wire shape shared by every table subscription.
type tableFrame[T any] struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	Data   []T    `json:"data"`
}

// tableRows converts a table frame into rows. A missing or empty data array
// yields no rows and no error.
func tableRows[T any](env *Envelope) ([]Row[T], error) {
	var frame tableFrame[T]
	if err := env.DecodeAll(&frame); err != nil {
		return nil, err
	}

	if len(frame.Data) == 0 {
		return nil, nil
	}

	action := ParseAction(frame.Action)
	rows := make([]Row[T], 0, len(frame.Data))
	for _, data := range frame.Data {
		rows = append(rows, Row[T]{
			Table:  frame.Table,
			Action: action,
			Data:   data,
		})
	}

	return rows, nil
}

// tableIs matches table frames whose table name equals one of names.
// Frames carrying an error field never match a table.
func tableIs(names ...string) func(env *Envelope) bool {
	return func(env *Envelope) bool {
		if env.Has(fieldError) {
			return false
		}
		table, ok := env.Table()
		if !ok {
			return false
		}
		for _, name := range names {
			if table == name {
				return true
			}
		}
		return false
	}
}

// tableHasPrefix matches table frames whose table name starts with prefix.
func tableHasPrefix(prefix string) func(env *Envelope) bool {
	return func(env *Envelope) bool {
		if env.Has(fieldError) {
			return false
		}
		table, ok := env.Table()
		return ok && strings.HasPrefix(table, prefix)
	}
}

// decodeOne converts the whole envelope into a single value.
func decodeOne[T any](env *Envelope) ([]T, error) {
	var v T
	if err := env.DecodeAll(&v); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return []T{v}, nil
}
