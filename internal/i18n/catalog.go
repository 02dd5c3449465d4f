// Package i18n holds the message catalogs for every user-visible string.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Message keys
const (
	FormTitle          = "form.title"
	FormButton         = "form.button"
	FormName           = "form.name"
	FormSurname        = "form.surname"
	FormEmail          = "form.email"
	FormHoneypot       = "form.honeypot"
	FormListMissing    = "form.list_missing"
	FormListNotFound   = "form.list_not_found"
	FormIncomplete     = "form.incomplete"
	SecurityError      = "security.error"
	SpamDetected       = "spam.detected"
	Throttled          = "throttled"
	NameRequired       = "validation.name_required"
	NameTooLong        = "validation.name_too_long"
	SurnameRequired    = "validation.surname_required"
	SurnameTooLong     = "validation.surname_too_long"
	EmailRequired      = "validation.email_required"
	EmailInvalid       = "validation.email_invalid"
	EmailTooLong       = "validation.email_too_long"
	SpamContent        = "validation.spam_content"
	Duplicate          = "duplicate"
	PersistFailed      = "persist_failed"
	Success            = "success"
	PermissionDenied   = "admin.permission_denied"
	ExportInvalidFmt   = "export.invalid_format"
	ExportListNotFound = "export.list_not_found"
	ExportAllLists     = "export.all_lists"
	ExportFilePrefix   = "export.file_prefix"
	ColumnName         = "column.name"
	ColumnSurname      = "column.surname"
	ColumnEmail        = "column.email"
	ColumnDate         = "column.date"
	ColumnLists        = "column.lists"
	BulkSent           = "bulk.sent"
)

// Catalog resolves message keys for one language.
type Catalog struct {
	Tag      language.Tag
	messages map[string]string
}

// T formats the message for key. Unknown keys come back verbatim.
func (c *Catalog) T(key string, args ...interface{}) string {
	msg, ok := c.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Lang is the BCP 47 tag of the catalog.
func (c *Catalog) Lang() string {
	return c.Tag.String()
}

// Catalogs selects a catalog per request.
type Catalogs struct {
	fallback *Catalog
	byTag    map[language.Tag]*Catalog
	tags     []language.Tag
	matcher  language.Matcher
}

// New returns the built-in catalogs with defaultLang first in match order.
func New(defaultLang string) *Catalogs {
	all := []*Catalog{galician, spanish, english}

	def := language.Make(defaultLang)
	ordered := make([]*Catalog, 0, len(all))
	for _, c := range all {
		if c.Tag == def {
			ordered = append(ordered, c)
		}
	}
	for _, c := range all {
		if c.Tag != def {
			ordered = append(ordered, c)
		}
	}

	cs := &Catalogs{
		fallback: ordered[0],
		byTag:    make(map[language.Tag]*Catalog, len(ordered)),
	}
	for _, c := range ordered {
		cs.byTag[c.Tag] = c
		cs.tags = append(cs.tags, c.Tag)
	}
	cs.matcher = language.NewMatcher(cs.tags)

	return cs
}

// Default is the catalog used when nothing else matches.
func (cs *Catalogs) Default() *Catalog {
	return cs.fallback
}

// Match picks the catalog for an explicit lang parameter, else the Accept-Language header.
func (cs *Catalogs) Match(explicit, acceptLanguage string) *Catalog {
	if explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			_, idx, conf := cs.matcher.Match(tag)
			if conf != language.No {
				return cs.byTag[cs.tags[idx]]
			}
		}
	}

	if acceptLanguage == "" {
		return cs.fallback
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return cs.fallback
	}

	_, idx, conf := cs.matcher.Match(tags...)
	if conf == language.No {
		return cs.fallback
	}
	return cs.byTag[cs.tags[idx]]
}
