package mail

import "strings"

// Placeholders recognised in campaign bodies
const (
	PlaceholderName    = "{{nome}}"
	PlaceholderSurname = "{{apelido}}"
	PlaceholderEmail   = "{{correo}}"
)

type Recipient struct {
	Name    string
	Surname string
	Email   string
}

// Personalize substitutes the recipient fields into template. Values are inserted as-is.
func Personalize(template string, r Recipient) string {
	return strings.NewReplacer(
		PlaceholderName, r.Name,
		PlaceholderSurname, r.Surname,
		PlaceholderEmail, r.Email,
	).Replace(template)
}
