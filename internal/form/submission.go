package form

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/aman-churiwal/mailing-lists/internal/service"
)

// Posted field names
const (
	FieldName     = "ml_name"
	FieldSurname  = "ml_surname"
	FieldEmail    = "ml_mail"
	FieldListID   = "ml_list_id"
	FieldNonce    = "ml_nonce"
	FieldHoneypot = "ml_honeypot"
)

var requiredFields = []string{FieldNonce, FieldListID, FieldName, FieldSurname, FieldEmail}

// ParseSubmission builds a request for the form rendered for listID.
// It reports false when the post targets a different form, which is then left unprocessed.
func ParseSubmission(values url.Values, listID uint, ip string) (service.SubmissionRequest, bool) {
	posted, err := strconv.ParseUint(strings.TrimSpace(values.Get(FieldListID)), 10, 32)
	if err != nil || uint(posted) != listID {
		return service.SubmissionRequest{}, false
	}

	complete := true
	for _, field := range requiredFields {
		if _, ok := values[field]; !ok {
			complete = false
			break
		}
	}

	return service.SubmissionRequest{
		ListID:   listID,
		Name:     values.Get(FieldName),
		Surname:  values.Get(FieldSurname),
		Email:    values.Get(FieldEmail),
		Nonce:    values.Get(FieldNonce),
		Honeypot: values.Get(FieldHoneypot),
		IP:       ip,
		Complete: complete,
	}, true
}

// StateFor turns a submission result into form state, echoing posted values.
func StateFor(req service.SubmissionRequest, result service.Result) State {
	return State{
		Message: result.Message,
		Success: result.Accepted(),
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
	}
}
