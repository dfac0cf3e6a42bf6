package validator

import (
	"reflect"
	"strings"

	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation for API requests with the draft
// validator used before a save.
type Validator struct {
	structValidator *validator.Validate
	draftValidator  *DraftValidator
}

// New creates a new centralized validator instance.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		draftValidator:  NewDraftValidator(),
	}
}

// ValidateStruct validates struct tags only.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Draft returns the draft validator.
func (v *Validator) Draft() *DraftValidator {
	return v.draftValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}
