package infringement

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/BillWilson/pat-checker/pkg/errors"
)

// AnalyzeInput identifies one patent/company pair.
type AnalyzeInput struct {
	PatentID    string `json:"patent_id" validate:"required,max=255"`
	CompanyName string `json:"company_name" validate:"required,max=255"`
}

// Normalize trims surrounding whitespace from both fields.
func (in AnalyzeInput) Normalize() AnalyzeInput {
	return AnalyzeInput{
		PatentID:    strings.TrimSpace(in.PatentID),
		CompanyName: strings.TrimSpace(in.CompanyName),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks in against its struct tags and reports every failing field
// in the error detail.
func (in AnalyzeInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrCodeValidation, "invalid analysis input")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag()))
		}
	}
	return appErrors.New(appErrors.ErrCodeValidation, strings.Join(msgs, "; "))
}
