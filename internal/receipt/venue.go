package receipt

// Venue holds the constants printed in the receipt header and footer.
type Venue struct {
	Name     string
	Address  string
	Phone    string
	Currency string // suffix appended to every amount
}

// DefaultVenue returns the cinema the service was built for.
func DefaultVenue() Venue {
	return Venue{
		Name:     "Vershina Cinema",
		Address:  "1 Primernaya St., Moscow",
		Phone:    "+7 (999) 123-45-67",
		Currency: "₽",
	}
}
