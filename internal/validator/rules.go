package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"tutormatch_backend/internal/models"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-project-type", validateProjectType)
	mustRegister("is-recruitment-type", validateRecruitmentType)
	mustRegister("is-booking-status", validateBookingStatus)
	mustRegister("is-sort-field", validateSortField)
	mustRegister("is-export-format", validateExportFormat)
}

// Empty values pass every rule below; use 'required' to forbid them.

func validateProjectType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.ProjectType(value).Valid()
}

func validateRecruitmentType(fl validator.FieldLevel) bool {
	switch models.RecruitmentType(fl.Field().String()) {
	case "", models.RecruitAcademic, models.RecruitProfessional, models.RecruitBoth:
		return true
	}
	return false
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.BookingStatus(value).Valid()
}

func validateSortField(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "created_at", "updated_at", "name", "paper_count", "project_count":
		return true
	}
	return false
}

func validateExportFormat(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "excel", "csv":
		return true
	}
	return false
}
