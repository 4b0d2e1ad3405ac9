package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"barriored/internal/moderation"

	"github.com/go-playground/validator/v10"
)

// ColombianPhone 57 + 10 位
var ColombianPhone = regexp.MustCompile(`^57[0-9]{10}$`)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 错误字段使用 json 名称
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("colphone", func(fl validator.FieldLevel) bool {
			return ColombianPhone.MatchString(fl.Field().String())
		})
		// 部分更新时空字符串表示清空
		_ = validate.RegisterValidation("url_or_empty", emptyOr("url"))
		_ = validate.RegisterValidation("email_or_empty", emptyOr("email"))
	})
	return validate
}

func emptyOr(tag string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || validate.Var(v, tag) == nil
	}
}

// Struct 校验结构体，失败时返回 *moderation.ValidationError，字段名带 prefix
func Struct(v any, prefix string) *moderation.ValidationError {
	out := moderation.NewValidationError()
	err := instance().Struct(v)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add(strings.TrimSuffix(prefix, "."), "Datos invalidos")
		return out
	}
	for _, fe := range verrs {
		out.Add(prefix+fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath 去掉顶层结构体名：BusinessInput.hours[lunes].open -> hours[lunes].open
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return "Este campo es obligatorio"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("Debe tener al menos %s elementos", fe.Param())
		}
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener maximo %s caracteres", fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("Debe tener maximo %s elementos", fe.Param())
		}
		return fmt.Sprintf("Debe ser menor o igual a %s", fe.Param())
	case "len":
		return fmt.Sprintf("Debe tener %s caracteres", fe.Param())
	case "email", "email_or_empty":
		return "Email invalido"
	case "url", "url_or_empty":
		return "URL invalida"
	case "oneof":
		return fmt.Sprintf("Debe ser uno de: %s", fe.Param())
	case "colphone":
		return "Numero de WhatsApp invalido (ej: 573001234567)"
	case "numeric":
		return "Solo se permiten numeros"
	case "hexcolor":
		return "Color invalido"
	case "gt":
		return fmt.Sprintf("Debe ser mayor a %s", fe.Param())
	}
	return "Valor invalido"
}

// decodeJSON 解析请求体，未知字段忽略；JSON 本身不合法时记为 body 错误
func decodeJSON(raw []byte, dst any) *moderation.ValidationError {
	out := moderation.NewValidationError()
	if len(raw) == 0 {
		out.Add("body", "El cuerpo de la solicitud esta vacio")
		return out
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			out.Add(typeErr.Field, "Tipo de dato invalido")
			return out
		}
		out.Add("body", "JSON invalido")
	}
	return out
}
