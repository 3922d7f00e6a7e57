package http

import (
	"log"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/flashmemo/internal/utils"
)

var registerValidationOnce sync.Once

// registerValidations adds the custom binding rules to gin's validator:
//
//	bgcolor  a #RRGGBB or #AARRGGBB color (empty passes)
func registerValidations() {
	registerValidationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Printf("Validation: gin binding engine is not validator/v10, custom rules disabled")
			return
		}
		if err := v.RegisterValidation("bgcolor", validateBackgroundColor); err != nil {
			log.Printf("Validation: failed to register bgcolor: %v", err)
		}
	})
}

func validateBackgroundColor(fl validator.FieldLevel) bool {
	color := fl.Field().String()
	return color == "" || utils.IsValidColor(color)
}
