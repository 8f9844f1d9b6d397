package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindErrMsg 把绑定校验错误翻译成可读提示
func bindErrMsg(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "请求参数错误: " + err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("字段 %s 不能为空", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("字段 %s 长度不能小于 %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("字段 %s 长度不能超过 %s", fe.Field(), fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("字段 %s 必须是合法邮箱", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("字段 %s 只能是 %s 之一", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("字段 %s 校验失败", fe.Field()))
		}
	}
	return strings.Join(msgs, "；")
}
