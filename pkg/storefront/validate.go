package storefront

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// fieldLabels are the form labels shown in validation alerts.
var fieldLabels = map[string]string{
	"name":      "배송지 이름",
	"recipient": "받는 분",
	"phone":     "연락처",
	"address":   "주소",
	"addressId": "배송지",
	"content":   "내용",
	"rating":    "별점",
	"quantity":  "수량",
	"productId": "상품",
	"optionId":  "옵션",
}

// validateRequest checks dest before any network call is made.
func validateRequest(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, userMessage(errs[0])).WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min", "gt":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}

func userMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch {
	case fe.Field() == "rating":
		return "별점은 1점에서 5점 사이로 선택해주세요."
	case fe.Field() == "addressId":
		return "배송지를 선택해주세요."
	case fe.Tag() == "min" || fe.Tag() == "gt":
		return fmt.Sprintf("%s은(는) %s 이상이어야 합니다.", label, fe.Param())
	default:
		return fmt.Sprintf("%s을(를) 입력해주세요.", label)
	}
}
