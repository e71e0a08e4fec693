package usecase

import (
	"errors"
	"regexp"
	"strings"

	emaildomain "tempmail-backend/internal/email/domain"

	"github.com/go-playground/validator/v10"
)

var inboxNamePattern = regexp.MustCompile(`(?i)^[a-z0-9]([a-z0-9+.-]*[a-z0-9])?$`)

type inboxRequest struct {
	Inbox  string `validate:"required,max=64,inboxname"`
	Domain string `validate:"required,allowed_domain"`
}

// field -> tag -> message shown to the user
var validationMessages = map[string]map[string]string{
	"Inbox": {
		"required":  "Inbox name is required",
		"max":       "Inbox name too long",
		"inboxname": "Only alphanumeric characters and hyphens allowed",
	},
	"Domain": {
		"required":       "Domain is required",
		"allowed_domain": "Domain not allowed",
	},
}

// InboxValidator checks inbox names and domains before any network call.
type InboxValidator struct {
	validate *validator.Validate
	allowed  map[string]struct{}
	domains  []string
}

func NewInboxValidator(allowedDomains []string) *InboxValidator {
	v := &InboxValidator{
		validate: validator.New(),
		allowed:  make(map[string]struct{}, len(allowedDomains)),
	}
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if _, dup := v.allowed[d]; dup || d == "" {
			continue
		}
		v.allowed[d] = struct{}{}
		v.domains = append(v.domains, d)
	}

	// Registration only fails for empty tags or nil funcs.
	_ = v.validate.RegisterValidation("inboxname", func(fl validator.FieldLevel) bool {
		return inboxNamePattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("allowed_domain", func(fl validator.FieldLevel) bool {
		_, ok := v.allowed[strings.ToLower(fl.Field().String())]
		return ok
	})
	return v
}

// Validate returns a *domain.ValidationError for the first invalid field.
func (v *InboxValidator) Validate(inboxName, domain string) error {
	err := v.validate.Struct(inboxRequest{Inbox: inboxName, Domain: domain})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &emaildomain.ValidationError{Field: "inbox", Message: "Invalid input"}
	}

	fe := fieldErrs[0]
	msg := validationMessages[fe.StructField()][fe.Tag()]
	if msg == "" {
		msg = "Invalid input"
	}
	return &emaildomain.ValidationError{Field: strings.ToLower(fe.StructField()), Message: msg}
}

// ParseInboxAddress splits name@domain and validates both halves.
func (v *InboxValidator) ParseInboxAddress(address string) (emaildomain.Inbox, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(address)), "@")
	if len(parts) != 2 {
		return emaildomain.Inbox{}, &emaildomain.ValidationError{Field: "address", Message: "Invalid email address"}
	}
	if err := v.Validate(parts[0], parts[1]); err != nil {
		return emaildomain.Inbox{}, err
	}
	return emaildomain.Inbox{Name: parts[0], Domain: parts[1]}, nil
}

// AllowedDomains returns the configured domains.
func (v *InboxValidator) AllowedDomains() []string {
	return append([]string(nil), v.domains...)
}
