package validation

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/sjlee-dev/vidbrief/errors"
)

var (
	videoIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	videoURLPattern = regexp.MustCompile(
		`(?:youtube\.com/(?:watch\?v=|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`,
	)
)

// ExtractVideoID canonicalizes a raw 11-character video ID or any of the
// accepted YouTube link shapes (watch?v=, youtu.be/, /shorts/) down to the
// bare ID. Returns "" for anything else.
func ExtractVideoID(urlOrID string) string {
	urlOrID = strings.TrimSpace(urlOrID)
	if videoIDPattern.MatchString(urlOrID) {
		return urlOrID
	}

	match := videoURLPattern.FindStringSubmatch(urlOrID)
	if match == nil {
		return ""
	}
	return match[1]
}

type Validator struct {
	schema *playground.Validate
}

func NewValidator() *Validator {
	return &Validator{
		schema: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// ValidateVideoIdentifier checks a submitted identifier and returns the
// canonical video ID.
func (v *Validator) ValidateVideoIdentifier(identifier string) (string, error) {
	const op = "Validator.ValidateVideoIdentifier"

	if strings.TrimSpace(identifier) == "" {
		return "", errors.InvalidInput(op, nil, "Video identifier is required")
	}

	id := ExtractVideoID(identifier)
	if id == "" {
		return "", errors.InvalidInput(op, nil, "Invalid YouTube video identifier")
	}

	return id, nil
}

// ValidateStruct runs schema validation over a decoded request body and
// converts failures into a field-keyed validation error.
func (v *Validator) ValidateStruct(op string, s interface{}) error {
	err := v.schema.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return errors.InvalidInput(op, err, "Invalid request body")
	}

	details := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		details[field] = append(details[field], fieldMessage(fe))
	}

	return errors.Validation(op, details)
}

func fieldMessage(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
