package validator

import (
	"turfbook/pkg/logger"
	"turfbook/pkg/model"
	"turfbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type PrincipalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPrincipalValidator(log *logger.Logger) *PrincipalValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize principal validator", "error", err)
	}

	return &PrincipalValidator{
		validate: v,
		logger:   log,
	}
}

func (v *PrincipalValidator) ValidateRegister(req *model.RegisterRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *PrincipalValidator) ValidateLogin(req *model.LoginRequest) error {
	return validation.Struct(v.validate, req)
}

// ValidatePatch rejects present-but-empty fields as well as malformed ones.
func (v *PrincipalValidator) ValidatePatch(patch *model.PrincipalPatch) error {
	var errs validation.ValidationErrors
	for field, value := range map[string]*string{
		"full_name": patch.FullName,
		"username":  patch.Username,
		"phone_no":  patch.PhoneNo,
		"password":  patch.Password,
	} {
		if value != nil && *value == "" {
			errs = append(errs, validation.ValidationError{Field: field, Message: field + " cannot be empty"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return validation.Struct(v.validate, patch)
}
