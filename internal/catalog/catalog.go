// Package catalog holds the static schedule and concession menu offered
// by the cinema.  The data changes with releases, not at runtime.
package catalog

import "github.com/shopspring/decimal"

// Movie is one title on the schedule with its daily show times.
type Movie struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Times []string        `json:"times"`
	Price decimal.Decimal `json:"price"`
}

// Concession is an item sold at the bar.
type Concession struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Icon  string          `json:"icon"`
}

// Seat is one cell of the hall grid.
type Seat struct {
	ID   int `json:"id"`
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

const (
	hallRows    = 5
	seatsPerRow = 8
)

// Movies returns the current schedule.
func Movies() []Movie {
	return []Movie{
		{ID: 1, Title: "Three Heroes and the Navel of the Earth", Times: []string{"10:30", "17:20"}, Price: decimal.NewFromInt(350)},
		{ID: 2, Title: "Cheburashka", Times: []string{"11:50", "19:00"}, Price: decimal.NewFromInt(400)},
		{ID: 3, Title: "The Wizard of the Emerald City", Times: []string{"13:30", "21:05"}, Price: decimal.NewFromInt(380)},
		{ID: 4, Title: "Gorynych", Times: []string{"15:45"}, Price: decimal.NewFromInt(420)},
	}
}

// Concessions returns the bar menu.
func Concessions() []Concession {
	return []Concession{
		{Name: "Popcorn small", Price: decimal.NewFromInt(150), Icon: "Popcorn"},
		{Name: "Popcorn medium", Price: decimal.NewFromInt(250), Icon: "Popcorn"},
		{Name: "Popcorn large", Price: decimal.NewFromInt(350), Icon: "Popcorn"},
		{Name: "Coca-Cola 0.25l", Price: decimal.NewFromInt(125), Icon: "Coffee"},
		{Name: "Cotton candy", Price: decimal.NewFromInt(250), Icon: "IceCream"},
	}
}

// SeatGrid returns the hall layout; seat ids run row by row from 1.
func SeatGrid() []Seat {
	grid := make([]Seat, 0, hallRows*seatsPerRow)
	for i := 0; i < hallRows*seatsPerRow; i++ {
		grid = append(grid, Seat{ID: i + 1, Row: i/seatsPerRow + 1, Seat: i%seatsPerRow + 1})
	}
	return grid
}

// MovieByID looks a movie up by id.
func MovieByID(id int) (Movie, bool) {
	for _, m := range Movies() {
		if m.ID == id {
			return m, true
		}
	}
	return Movie{}, false
}
