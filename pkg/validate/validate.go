package validate

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"omninet-lottery/backend/pkg/shortcode"
)

var registerOnce sync.Once

// RegisterGinValidators 向 gin 的校验引擎注册自定义标签
//   - referralcode: 4-16 位 A-Z0-9（先做大写归一）
func RegisterGinValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("gin 校验引擎不是 validator.Validate")
			return
		}
		err = v.RegisterValidation("referralcode", referralCode)
	})
	return err
}

func referralCode(fl validator.FieldLevel) bool {
	return shortcode.Valid(shortcode.Normalize(fl.Field().String()))
}
