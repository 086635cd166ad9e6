package request

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by the DTOs:
//   - civildate: a "YYYY-MM-DD" calendar date
//   - yearmonth: a "YYYY-MM" calendar month
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("civildate", layoutValidator(DateLayout)); err != nil {
			return
		}
		err = v.RegisterValidation("yearmonth", layoutValidator(MonthLayout))
	})
	return err
}

func layoutValidator(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(layout, s)
		return err == nil
	}
}
