package validator

import (
	"turfbook/pkg/logger"
	"turfbook/pkg/model"
	"turfbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type TurfValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTurfValidator(log *logger.Logger) *TurfValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize turf validator", "error", err)
	}

	return &TurfValidator{
		validate: v,
		logger:   log,
	}
}

func (v *TurfValidator) Validate(req *model.RegisterTurfRequest) error {
	return validation.Struct(v.validate, req)
}
