package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

// requestValidator adapts go-playground/validator to echo.Validator.  Field
// names in errors are the JSON keys.
type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed on the Echo instance.
func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (r *requestValidator) Validate(i any) error { return r.v.Struct(i) }

// getUserID returns the authenticated user id.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errors.New("invalid user_id in context")
	}
	return id, nil
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	return parseUint(c.Param(name))
}

// bindAndValidate decodes the body into req and runs struct validation.  A
// non-nil return means a 400 response has already been written.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fieldMessage(fe)
			}
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es requerido."
	case "email":
		return "Ingrese un email válido."
	case "min":
		return fmt.Sprintf("Debe tener al menos %s caracteres.", fe.Param())
	case "max":
		return fmt.Sprintf("No puede superar %s caracteres.", fe.Param())
	case "url":
		return "Ingrese una URL válida."
	}
	return "Valor inválido."
}

var notFound = []error{
	repository.ErrCategoryNotFound,
	repository.ErrPaymentMethodNotFound,
	repository.ErrDestinationNotFound,
	repository.ErrReservationNotFound,
	repository.ErrTeamMemberNotFound,
	repository.ErrUserNotFound,
}

// writeError maps service and repository errors to responses.  Anything not
// recognised is logged and reported as 500 without details.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, ve)
	}
	var ves model.ValidationErrors
	if errors.As(err, &ves) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ves.Fields()})
	}
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
		}
	}
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "referenced record does not exist"})
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pageParams reads page and page_size, clamped to the listing bounds so
// responses echo the values actually used.
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return service.NormalizePage(page, size)
}

func uintQuery(c echo.Context, name string) uint64 {
	n, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return n
}

func parseUint(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil && n > 0
}
