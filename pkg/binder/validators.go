package binder

import (
	"github.com/go-playground/validator/v10"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pipeline"
)

// sortKeyValidator accepts the known sort keys. The empty string is allowed so
// the field can be left out; add `required` to disallow it.
func sortKeyValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return pipeline.SortKey(value).Valid()
}

func viewModeValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ViewMode(value).Valid()
}
