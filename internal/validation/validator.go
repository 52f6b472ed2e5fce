package validation

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/volatiletech/null/v8"

	"github.com/noah-isme/spi-admin-api/internal/models"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

const (
	notBlankTag = "notblank"
	maxBytesTag = "maxbytes"
)

// Patch maps column names to the values supplied by the client.
type Patch map[string]interface{}

// Columns returns the patch keys in a stable order.
func (p Patch) Columns() []string {
	cols := make([]string, 0, len(p))
	for col := range p {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Validator decodes payloads into tagged structs and enforces their rules.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	mapper     *reflectx.Mapper
}

// New builds a Validator with English messages and JSON field names.
func New() *Validator {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterCustomTypeFunc(nullableValue, null.String{}, null.Int{}, models.Date{})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterTranslation(notBlankTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fmt.Sprintf("%s cannot be blank", fe.Field())
		})

	_ = validate.RegisterValidation(maxBytesTag, maxBytes)
	_ = validate.RegisterTranslation(maxBytesTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fmt.Sprintf("%s must be at most %s bytes long", fe.Field(), fe.Param())
		})

	return &Validator{
		validate:   validate,
		translator: translator,
		mapper:     reflectx.NewMapperFunc("db", strings.ToLower),
	}
}

// Struct validates s and reports the first failing rule.
func (v *Validator) Struct(s interface{}) error {
	return v.report(v.validate.Struct(s), nil)
}

// Decode copies every recognised key of p into dest, a pointer to a struct
// whose db tags name the keys, then validates the whole struct. Unknown keys
// are ignored.
func (v *Validator) Decode(p Payload, dest interface{}) error {
	if _, err := v.assign(p, dest, false); err != nil {
		return err
	}
	return v.Struct(dest)
}

// Patch decodes p into dest like Decode but rejects unknown keys, validates
// only the supplied fields and returns them as a column map. An empty payload
// yields NoFieldsToUpdate.
func (v *Validator) Patch(p Payload, dest interface{}) (Patch, error) {
	if len(p) == 0 {
		return nil, appErrors.ErrNoFieldsToUpdate
	}
	patch, err := v.assign(p, dest, true)
	if err != nil {
		return nil, err
	}
	supplied := make(map[string]struct{}, len(patch))
	for col := range patch {
		supplied[col] = struct{}{}
	}
	if err := v.report(v.validate.Struct(dest), supplied); err != nil {
		return nil, err
	}
	return patch, nil
}

func (v *Validator) assign(p Payload, dest interface{}, strict bool) (Patch, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, appErrors.Internal(fmt.Errorf("decode target must be a struct pointer, got %T", dest), "internal server error")
	}
	fields := v.fields(rv.Elem().Type())

	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	patch := make(Patch, len(keys))
	for _, key := range keys {
		fi, ok := fields[key]
		if !ok {
			if strict {
				return nil, appErrors.Unknown(key)
			}
			continue
		}
		field := reflectx.FieldByIndexes(rv.Elem(), fi.Index)
		target := reflect.New(field.Type())
		if err := json.Unmarshal(p[key], target.Interface()); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Field '%s' has an invalid value", key))
		}
		field.Set(target.Elem())
		patch[key] = field.Interface()
	}
	return patch, nil
}

// fields lists the top-level columns of t, flattening embedded structs.
func (v *Validator) fields(t reflect.Type) map[string]*reflectx.FieldInfo {
	sm := v.mapper.TypeMap(t)
	out := make(map[string]*reflectx.FieldInfo, len(sm.Names))
	for path, fi := range sm.Names {
		if strings.Contains(path, ".") || fi.Name == "id" {
			continue
		}
		out[path] = fi
	}
	return out
}

func (v *Validator) report(err error, only map[string]struct{}) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	for _, fe := range verrs {
		if only != nil {
			if _, ok := only[fe.Field()]; !ok {
				continue
			}
		}
		return appErrors.Clone(appErrors.ErrValidation, fe.Translate(v.translator))
	}
	return nil
}

func nullableValue(field reflect.Value) interface{} {
	valuer, ok := field.Interface().(driver.Valuer)
	if !ok {
		return nil
	}
	val, err := valuer.Value()
	if err != nil {
		return nil
	}
	return val
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return fl.Field().IsValid() && !fl.Field().IsZero()
}

// maxBytes limits the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
