package http

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags to gin's binding validator:
// fasttype, mood, energy and symptom.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("fasttype", func(fl validator.FieldLevel) bool {
			return domain.IsValidFastingType(fl.Field().String())
		})
		_ = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
			return domain.IsValidMood(fl.Field().String())
		})
		_ = v.RegisterValidation("energy", func(fl validator.FieldLevel) bool {
			return domain.IsValidEnergy(fl.Field().String())
		})
		_ = v.RegisterValidation("symptom", func(fl validator.FieldLevel) bool {
			return domain.IsValidSymptom(fl.Field().String())
		})
	})
}
