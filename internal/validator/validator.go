package validator

import (
	"reflect"
	"strings"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with domain business rules.
type Validator struct {
	structValidator *validator.Validate
	normValidator   *NormValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		normValidator:   NewNormValidator(),
	}
}

// ValidateStruct validates struct tags only.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Norm returns the norm-table business validator.
func (v *Validator) Norm() *NormValidator {
	return v.normValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("group_type", validateGroupType)
	validate.RegisterValidation("question_status", validateQuestionStatus)
	validate.RegisterValidation("question_usage", validateQuestionUsage)
	validate.RegisterValidation("test_type", validateTestType)

	// Report json field names in error messages instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateGroupType(fl validator.FieldLevel) bool {
	validTypes := []models.GroupType{
		models.GroupSchool,
		models.GroupRegion,
		models.GroupCompany,
		models.GroupAge,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateQuestionStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.QuestionStatus{
		models.QuestionWaiting,
		models.QuestionApproved,
		models.QuestionRejected,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateQuestionUsage(fl validator.FieldLevel) bool {
	validUsages := []models.QuestionUsage{
		models.UsageAptitude,
		models.UsagePersonality,
	}

	value := fl.Field().String()
	for _, validUsage := range validUsages {
		if string(validUsage) == value {
			return true
		}
	}
	return false
}

func validateTestType(fl validator.FieldLevel) bool {
	validTypes := []models.TestType{
		models.TestAptitude,
		models.TestPersonality,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}
