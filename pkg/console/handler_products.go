package console

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

func (s *Server) productSearchHandler(c *echo.Context) error {
	products, err := s.gw.SearchProducts(c.Request().Context(), c.QueryParam("keyword"))
	if err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) productImageSearchHandler(c *echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read image file")
	}
	defer f.Close()

	products, err := s.gw.SearchProductsByImage(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, products)
}
