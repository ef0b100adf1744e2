package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var chainIDPattern = regexp.MustCompile(`^[a-z0-9]{1,32}$`)

// Init 注册自定义校验规则到 gin 的 validator
func Init() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return Register(v)
}

// Register adds the bridge tags to v: evm_address and chain_id.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("evm_address", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
	}); err != nil {
		return err
	}
	return v.RegisterValidation("chain_id", func(fl validator.FieldLevel) bool {
		return chainIDPattern.MatchString(fl.Field().String())
	})
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
			case "evm_address":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是有效的 EVM 地址", field))
			case "chain_id":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 1-32 位小写字母或数字", field))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 长度不能超过 %s", field, e.Param()))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, e.Tag()))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "请求参数错误"
}
