package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Seat identifies one reserved seat in a booking.  Clients send seats
// either as JSON numbers (the seat id on the hall grid) or as strings
// (a printed label such as "B7").  Both forms are kept so a receipt can
// show exactly what the customer picked.
//
// Fields:
//  Number  – numeric seat id, meaningful only when IsNumeric is true.
//  Label   – textual seat label, used when the seat was sent as a string.
type Seat struct {
	Number  decimal.Decimal // numeric identifier
	Label   string          // textual identifier
	numeric bool
}

// NumberSeat builds a numeric seat.
func NumberSeat(n int64) Seat {
	return Seat{Number: decimal.NewFromInt(n), numeric: true}
}

// LabelSeat builds a textual seat.
func LabelSeat(label string) Seat {
	return Seat{Label: label}
}

// IsNumeric reports whether the seat was given as a number.
func (s Seat) IsNumeric() bool { return s.numeric }

// String renders the seat the way it appears on a receipt.
func (s Seat) String() string {
	if s.numeric {
		return s.Number.String()
	}
	return s.Label
}

// UnmarshalJSON accepts a JSON number or a JSON string.
func (s *Seat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("seat must be a number or a string")
	}
	if data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		label = strings.TrimSpace(label)
		if label == "" {
			return fmt.Errorf("seat label must not be empty")
		}
		*s = LabelSeat(label)
		return nil
	}
	n, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid seat %s", data)
	}
	*s = Seat{Number: n, numeric: true}
	return nil
}

// MarshalJSON writes numeric seats as numbers and labels as strings.
func (s Seat) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(s.Number.String()), nil
	}
	return json.Marshal(s.Label)
}

// CompareSeats orders seats naturally: numeric seats first by value,
// then labels by natural string order ("A2" before "A10").
func CompareSeats(a, b Seat) int {
	switch {
	case a.numeric && b.numeric:
		return a.Number.Cmp(b.Number)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	}
	return naturalCompare(a.Label, b.Label)
}

// SortedSeats returns a sorted copy; the input slice is left untouched.
func SortedSeats(seats []Seat) []Seat {
	out := slices.Clone(seats)
	slices.SortStableFunc(out, CompareSeats)
	return out
}

// naturalCompare compares strings chunk by chunk, treating runs of
// digits as numbers.
func naturalCompare(a, b string) int {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if ar[i] != br[j] {
			if ar[i] < br[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(ar)-i < len(br)-j:
		return -1
	case len(ar)-i > len(br)-j:
		return 1
	}
	return strings.Compare(a, b)
}
