package store

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tgienger/ptn/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("notblank", notBlank)
}

// notBlank rejects strings that are empty after trimming whitespace
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// checkText applies the notblank and max rules; max counts runes for strings
func checkText(text string, limit int) error {
	if err := validate.Var(text, fmt.Sprintf("notblank,max=%d", limit)); err != nil {
		return fmt.Errorf("%w: must be 1-%d characters", ErrValidation, limit)
	}
	return nil
}

func checkTaskText(text string) error { return checkText(text, models.TaskTextLimit) }

func checkNoteText(text string) error { return checkText(text, models.NoteTextLimit) }
