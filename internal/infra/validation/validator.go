package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fitryne/internal/app/middleware"
)

// ErrInvalid wraps every rejection coming from struct tags.
var ErrInvalid = errors.New("validation: invalid message")

// selfValidating messages check their domain rules before tags are applied.
type selfValidating interface {
	Validate() error
}

// FieldError names one failing field in a tag rejection.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e FieldError) String() string {
	if e.Param != "" {
		return e.Field + " " + e.Tag + "=" + e.Param
	}
	return e.Field + " " + e.Tag
}

// Error lists every field that failed its tags.
type Error struct {
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalid, e.Message, strings.Join(parts, ", "))
}

func (e *Error) Unwrap() error { return ErrInvalid }

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate runs the message's own Validate method, if any, then its struct tags.
func (v *Validator) Validate(ctx context.Context, message any) error {
	if message == nil {
		return fmt.Errorf("%w: nil message", ErrInvalid)
	}
	if sv, ok := message.(selfValidating); ok {
		if err := sv.Validate(); err != nil {
			return err
		}
	}
	if !isStruct(message) {
		return nil
	}
	err := v.v.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out := &Error{Message: reflect.TypeOf(message).Name()}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

var _ middleware.Validator = (*Validator)(nil)
