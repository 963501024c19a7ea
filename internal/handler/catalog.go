package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/iliyamo/cinema-receipt-service/internal/catalog"
)

type movieResponse struct {
	ID    int         `json:"id"`
	Title string      `json:"title"`
	Times []string    `json:"times"`
	Price json.Number `json:"price"`
}

type concessionResponse struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
	Icon  string      `json:"icon"`
}

// Movies lists the schedule.
func Movies(c echo.Context) error {
	items := lo.Map(catalog.Movies(), func(m catalog.Movie, _ int) movieResponse {
		return movieResponse{ID: m.ID, Title: m.Title, Times: m.Times, Price: jsonNumber(m.Price)}
	})
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Movie returns one schedule entry by id.
func Movie(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, ok := catalog.MovieByID(id)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	return c.JSON(http.StatusOK, movieResponse{ID: m.ID, Title: m.Title, Times: m.Times, Price: jsonNumber(m.Price)})
}

// Concessions lists the bar menu.
func Concessions(c echo.Context) error {
	items := lo.Map(catalog.Concessions(), func(cn catalog.Concession, _ int) concessionResponse {
		return concessionResponse{Name: cn.Name, Price: jsonNumber(cn.Price), Icon: cn.Icon}
	})
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Seats returns the hall layout.
func Seats(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": catalog.SeatGrid()})
}
