// Package validation checks registration submissions before they reach the
// workflow. Every violation is collected and reported under its dot-joined
// field path (candidates.0.name); the leader rule is reported on the
// candidates array itself.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"athmageeth-portal/models"
)

// FormMessage is the top-level text returned with any set of field errors.
const FormMessage = "Please check the form for errors."

// FieldErrors maps a field path to its ordered list of messages.
type FieldErrors map[string][]string

func (f FieldErrors) add(path, msg string) {
	f[path] = append(f[path], msg)
}

// Error is returned when a submission breaks one or more rules.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	return "check the form for errors"
}

// ------------------- messages -------------------

const (
	digitsOnly = "Number must contain only digits."
	tooLong    = "Number is too long."
)

// messages is keyed by field path with array indexes removed, then by the
// failing validator tag.
var messages = map[string]map[string]string{
	"institutionName": {"min": "Institution Name is required."},
	"place":           {"min": "Place is required."},
	"district": {
		"required": "District is required.",
		"district": "Please select a valid district.",
	},
	"candidates": {
		"min":       "At least 1 candidate is required.",
		"max":       "Maximum 5 candidates allowed.",
		"oneleader": "Please select exactly one Team Leader.",
	},
	"candidates.name": {"min": "Candidate Name is required."},
	"whatsappNumber": {
		"min":    "WhatsApp Number must be at least 10 digits.",
		"max":    tooLong,
		"digits": digitsOnly,
	},
	"unionOfficialNumber": {
		"min":    "Union Official Number must be at least 10 digits.",
		"max":    tooLong,
		"digits": digitsOnly,
	},
	"principalName": {"min": "Principal Name is required."},
	"principalPhone": {
		"min":    "Principal Phone Number must be at least 10 digits.",
		"max":    tooLong,
		"digits": digitsOnly,
	},
	"receiptUrl": {"receipt": "Please upload the payment receipt."},
}

func messageFor(path, tag string) string {
	if byTag, ok := messages[indexPattern.ReplaceAllString(path, "")]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	return "Invalid value."
}

// ------------------- engine -------------------

var (
	digitsPattern  = regexp.MustCompile(`^\d+$`)
	bracketPattern = regexp.MustCompile(`\[(\d+)\]`)
	indexPattern   = regexp.MustCompile(`\.\d+`)
)

// Engine validates and normalises registration payloads. It is safe for
// concurrent use.
type Engine struct {
	validate       *validator.Validate
	requireReceipt bool
}

// Option customises an Engine.
type Option func(*Engine)

// WithReceiptRequired makes an empty receiptUrl a validation failure.
func WithReceiptRequired(required bool) Option {
	return func(e *Engine) { e.requireReceipt = required }
}

// New builds an Engine with the registration rules installed.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration of a tag only fails for an empty name or nil func
	_ = v.RegisterValidation("district", func(fl validator.FieldLevel) bool {
		return models.IsDistrict(fl.Field().String())
	})
	v.RegisterStructValidation(e.registrationRules, models.RegistrationInput{})

	e.validate = v
	return e
}

// registrationRules runs after every field rule of RegistrationInput. The
// checks here do not stop at a failed length rule, so a field can carry
// several messages and items are checked even when the array is too long.
func (e *Engine) registrationRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(models.RegistrationInput)

	leaders := 0
	for i, c := range in.Candidates {
		if utf8.RuneCountInString(c.Name) < 2 {
			sl.ReportError(c.Name, fmt.Sprintf("candidates[%d].name", i), "Name", "min", "2")
		}
		if c.IsLeader {
			leaders++
		}
	}
	if leaders != 1 {
		sl.ReportError(in.Candidates, "candidates", "Candidates", "oneleader", "")
	}

	for _, f := range []struct{ name, value string }{
		{"whatsappNumber", in.WhatsappNumber},
		{"unionOfficialNumber", in.UnionOfficialNumber},
		{"principalPhone", in.PrincipalPhone},
	} {
		if !digitsPattern.MatchString(f.value) {
			sl.ReportError(f.value, f.name, f.name, "digits", "")
		}
	}

	if e.requireReceipt && in.ReceiptURL == "" {
		sl.ReportError(in.ReceiptURL, "receiptUrl", "ReceiptURL", "receipt", "")
	}
}

// Validate normalises in and checks it. On success it returns the normalised
// payload and a nil error; otherwise the error is an *Error.
func (e *Engine) Validate(in models.RegistrationInput) (models.RegistrationInput, error) {
	in = Normalize(in)

	err := e.validate.Struct(in)
	if err == nil {
		return in, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return in, fmt.Errorf("validating registration: %w", err)
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		fields.add(path, messageFor(path, fe.Tag()))
	}
	return in, &Error{Fields: fields}
}

// Normalize trims surrounding whitespace from every text field.
func Normalize(in models.RegistrationInput) models.RegistrationInput {
	out := in
	out.InstitutionName = strings.TrimSpace(in.InstitutionName)
	out.Place = strings.TrimSpace(in.Place)
	out.District = strings.TrimSpace(in.District)
	out.WhatsappNumber = strings.TrimSpace(in.WhatsappNumber)
	out.UnionOfficialNumber = strings.TrimSpace(in.UnionOfficialNumber)
	out.PrincipalName = strings.TrimSpace(in.PrincipalName)
	out.PrincipalPhone = strings.TrimSpace(in.PrincipalPhone)
	out.ReceiptURL = strings.TrimSpace(in.ReceiptURL)

	if in.Candidates != nil {
		out.Candidates = make([]models.CandidateInput, len(in.Candidates))
		for i, c := range in.Candidates {
			out.Candidates[i] = models.CandidateInput{Name: strings.TrimSpace(c.Name), IsLeader: c.IsLeader}
		}
	}
	return out
}

// fieldPath turns "RegistrationInput.candidates[0].name" into "candidates.0.name".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return bracketPattern.ReplaceAllString(namespace, ".$1")
}

// ------------------- decoding failures -------------------

// FromDecodeError reports a payload that could not be decoded (wrong JSON
// types, malformed body) in the same shape as a rule violation. body is the
// raw request; when it is a JSON object every field is decoded on its own so
// each mistyped field, including candidate items, is reported under its
// indexed path.
func FromDecodeError(body []byte, err error) *Error {
	fields := FieldErrors{}

	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) == nil {
		typeErrors(raw, reflect.TypeOf(models.RegistrationInput{}), "", fields)
	}
	if len(fields) > 0 {
		return &Error{Fields: fields}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields.add(typeErr.Field, "Invalid value.")
	} else {
		fields.add("form", "The submission could not be read.")
	}
	return &Error{Fields: fields}
}

// typeErrors decodes each member of raw into the matching field of typ and
// records the paths that do not fit. Slices of structs are walked item by
// item.
func typeErrors(raw map[string]json.RawMessage, typ reflect.Type, prefix string, fields FieldErrors) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		value, ok := raw[name]
		if name == "" || name == "-" || !ok {
			continue
		}
		path := prefix + name

		if f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.Struct {
			var items []json.RawMessage
			if err := json.Unmarshal(value, &items); err != nil {
				fields.add(path, "Invalid value.")
				continue
			}
			for j, item := range items {
				itemPath := fmt.Sprintf("%s.%d", path, j)
				var members map[string]json.RawMessage
				if err := json.Unmarshal(item, &members); err != nil {
					fields.add(itemPath, "Invalid value.")
					continue
				}
				typeErrors(members, f.Type.Elem(), itemPath+".", fields)
			}
			continue
		}

		if err := json.Unmarshal(value, reflect.New(f.Type).Interface()); err != nil {
			fields.add(path, "Invalid value.")
		}
	}
}
