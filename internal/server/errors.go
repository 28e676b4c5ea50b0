package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tasktrack/internal/models"
)

// fieldError is one entry of a 422 response.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func respondValidation(c *gin.Context, details []fieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
}

var tagNameOnce sync.Once

// useJSONFieldNames makes validation errors name fields by their JSON key.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// validationDetail turns a binding error into field-level detail.
func validationDetail(err error) []fieldError {
	var (
		verrs     validator.ValidationErrors
		dateErr   *models.DateError
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &verrs):
		details := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldError{
				Loc:  []string{"body", fe.Field()},
				Msg:  describe(fe),
				Type: fe.Tag(),
			})
		}
		return details

	case errors.As(err, &dateErr):
		return []fieldError{{
			Loc:  []string{"body", "deadline"},
			Msg:  "Input should be a valid date in the format YYYY-MM-DD",
			Type: "date_parsing",
		}}

	case errors.As(err, &typeErr):
		return []fieldError{{
			Loc:  []string{"body", typeErr.Field},
			Msg:  fmt.Sprintf("Input should be a valid %s", typeErr.Type),
			Type: "type_error",
		}}

	case errors.Is(err, io.EOF):
		return []fieldError{{
			Loc:  []string{"body"},
			Msg:  "Field required",
			Type: "missing",
		}}

	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, errTrailingData):
		return []fieldError{{
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}}
	}

	return []fieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "max":
		return fmt.Sprintf("String should have at most %s characters", fe.Param())
	}
	return fe.Error()
}
