package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/middleware"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// Failures unwrap to domain.ErrValidation, except oversized bodies.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var (
			maxErr   *http.MaxBytesError
			typeErr  *json.UnmarshalTypeError
			parseErr *time.ParseError
		)
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: limit is %d bytes", errPayloadTooLarge, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is required", domain.ErrValidation)
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return fieldErrors{typeErr.Field: "has the wrong type"}
		case errors.As(err, &parseErr):
			return fmt.Errorf("%w: dates must use the YYYY-MM-DD format", domain.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON body", domain.ErrValidation)
	}

	if err := validate.Struct(dst); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			return toFieldErrors(ves)
		}
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}

func toFieldErrors(ves validator.ValidationErrors) fieldErrors {
	out := make(fieldErrors, len(ves))
	for _, fe := range ves {
		// Namespace is "<struct>.<json path>"; drop the struct name.
		_, path, found := strings.Cut(fe.Namespace(), ".")
		if !found {
			path = fe.Field()
		}
		out[path] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

var pathParamOptions = runtime.BindStyledParameterOptions{
	ParamLocation: runtime.ParamLocationPath,
	Explode:       false,
	Required:      true,
}

// pathUUID binds the named chi path parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id, pathParamOptions); err != nil {
		return uuid.Nil, fieldErrors{name: "must be a valid UUID"}
	}
	return id, nil
}

// pathDate binds the named chi path parameter as a YYYY-MM-DD date.
func pathDate(r *http.Request, name string) (time.Time, error) {
	var d types.Date
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &d, pathParamOptions); err != nil {
		return time.Time{}, fieldErrors{name: "must be a date in the YYYY-MM-DD format"}
	}
	return d.Time, nil
}

// caller returns the acting user loaded by middleware.NewUserResolver.
func caller(r *http.Request) (domain.User, error) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return domain.User{}, fmt.Errorf("handler.caller: %w", domain.ErrUnauthenticated)
	}
	return u, nil
}
