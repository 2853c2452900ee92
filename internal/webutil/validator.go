// internal/webutil/validator.go
package webutil

import (
	"log"
	"reflect"
	"strings"

	"studyflow/internal/model"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pt_br_translations "github.com/go-playground/validator/v10/translations/pt_BR"
)

// Validator is the application-wide validator instance.
var Validator *validator.Validate

// Trans translates validation error messages to pt-BR.
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"name":       "nome",
	"email":      "e-mail",
	"password":   "senha",
	"subject_id": "disciplina",
	"amount":     "quantidade",
	"reason":     "motivo",
	"hours":      "horas",
	"minutes":    "minutos",
	"seconds":    "segundos",
	"pages":      "páginas",
	"correct":    "acertos",
	"wrong":      "erros",
	"blank":      "em branco",
}

func init() {
	Validator = validator.New()

	// Report field names by their json tag.
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	brazilian := pt_BR.New()
	uni := ut.New(brazilian, brazilian)
	var found bool
	Trans, found = uni.GetTranslator("pt_BR")
	if !found {
		log.Fatal("translator not found")
	}
	if err := pt_br_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	registerTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			fieldName := fe.Field()
			if translated, ok := fieldNameTranslations[fieldName]; ok {
				fieldName = translated
			}
			t, _ := ut.T(tag, fieldName)
			return t
		})
	}

	registerTranslation("required", "O campo {0} é obrigatório.")
	registerTranslation("email", "O campo {0} não é um endereço de e-mail válido.")

	registerParamTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			fieldName := fe.Field()
			if translated, ok := fieldNameTranslations[fieldName]; ok {
				fieldName = translated
			}
			t, _ := ut.T(tag, fieldName, fe.Param())
			return t
		})
	}

	registerParamTranslation("min", "O campo {0} deve ter no mínimo {1} caracteres.")
	registerParamTranslation("max", "O campo {0} deve ter no máximo {1} caracteres.")
	registerParamTranslation("gte", "O campo {0} deve ser maior ou igual a {1}.")
	registerParamTranslation("lte", "O campo {0} deve ser menor ou igual a {1}.")
}

// NewValidationErrorResponse folds every validation error into one AppError
// with translated messages.
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	var fields []string
	var messages []string

	for _, err := range errs {
		fields = append(fields, err.Field())
		messages = append(messages, err.Translate(Trans))
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, " "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}
