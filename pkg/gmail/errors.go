package gmail

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// Error message fragments Google returns when the stored credential is no
// longer accepted. Matched case-sensitively.
var authErrorSignatures = []string{
	"invalid_grant",
	"Token has been expired",
	"Invalid Credentials",
	"missing required authentication credential",
	"Request had invalid authentication credentials",
}

// IsAuthError reports whether err means the refresh token was rejected.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sig := range authErrorSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether Gmail answered 404 for the requested resource.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
