package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"civictrack-be/models"
)

type DefaultValidator struct {
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
}

var _ binding.StructValidator = &DefaultValidator{}

var installOnce sync.Once

// Install makes DefaultValidator gin's binding validator.
func Install() {
	installOnce.Do(func() {
		binding.Validator = &DefaultValidator{}
	})
}

func (v *DefaultValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) == reflect.Struct {
		v.lazyinit()
		if err := v.validate.Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

func (v *DefaultValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *DefaultValidator) Translator() ut.Translator {
	v.lazyinit()
	return v.translator
}

func (v *DefaultValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.SetTagName("binding")

		// report fields by their json/form name
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		en := en.New()
		uni := ut.New(en, en)
		v.translator, _ = uni.GetTranslator("en")

		en_translations.RegisterDefaultTranslations(v.validate, v.translator)

		v.registerEnums()
	})
}

type enumRule struct {
	tag     string
	valid   func(string) bool
	message string
}

var enumRules = []enumRule{
	{"category", func(s string) bool { return models.Category(s).Valid() }, "{0} must be one of pothole, garbage, streetlight, traffic, parks, other"},
	{"issuestatus", func(s string) bool { return models.Status(s).Valid() }, "{0} must be one of pending, in-progress, resolved, rejected"},
	{"flagreason", func(s string) bool { return models.FlagReason(s).Valid() }, "{0} must be one of inappropriate, spam, duplicate, other"},
	{"reviewoutcome", func(s string) bool { return models.ReviewStatus(s).Outcome() }, "{0} must be valid or spam"},
}

func (v *DefaultValidator) registerEnums() {
	for _, rule := range enumRules {
		rule := rule
		v.validate.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
			return rule.valid(fl.Field().String())
		})
		v.validate.RegisterTranslation(rule.tag, v.translator, func(ut ut.Translator) error {
			return ut.Add(rule.tag, rule.message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(rule.tag, fe.Field())
			return t
		})
	}
}

// Fields translates validator errors into a field -> message map keyed by
// the dotted json path (e.g. "location.lat"). It returns nil for any other
// error.
func Fields(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	var trans ut.Translator
	if v, ok := binding.Validator.(*DefaultValidator); ok {
		trans = v.Translator()
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		key := fieldPath(e.Namespace())
		if trans != nil {
			fields[key] = e.Translate(trans)
		} else {
			fields[key] = e.Error()
		}
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()

	if valueType == reflect.Pointer {
		valueType = value.Elem().Kind()
	}

	return valueType
}
