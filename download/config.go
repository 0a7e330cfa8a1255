package download

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultChunkSize is the copy buffer size used when none is configured.
const DefaultChunkSize = 1024

// TransferConfig holds the per-task transfer settings. It is supplied
// by the caller and never read from ambient global state.
type TransferConfig struct {
	ChunkSize  int  `yaml:"chunk_size" validate:"min=1"`
	Overwrite  bool `yaml:"overwrite"`
	MaxRetries int  `yaml:"max_retries" validate:"min=0"`
}

// DefaultTransferConfig returns the documented defaults: one retry,
// a 1KiB chunk and no overwrite of existing files.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		ChunkSize:  DefaultChunkSize,
		MaxRetries: DefaultMaxRetries,
	}
}

// Validate checks the config against its declared tags.
func (c TransferConfig) Validate() error {
	return Validate(c)
}

// RetryPolicy returns the policy described by the config.
func (c TransferConfig) RetryPolicy() RetryPolicy {
	return NewRetryPolicy(c.MaxRetries)
}

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("download: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}

// Validate checks any struct against its `validate` tags, returning
// FieldErrors keyed by yaml field name.
func Validate(val any) error {
	if err := validate.Struct(val); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		fields := make(FieldErrors, 0, len(verrors))
		for _, verror := range verrors {
			fields = append(fields, FieldError{
				Field: verror.Field(),
				Err:   verror.Translate(translator),
			})
		}
		return fields
	}

	return nil
}

// FieldError is a validation failure on a single config field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

// Fields returns the failing fields mapped to their messages.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, f := range fe {
		m[f.Field] = f.Err
	}
	return m
}
