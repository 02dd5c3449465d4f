package i18n

import "golang.org/x/text/language"

var galician = &Catalog{
	Tag: language.MustParse("gl"),
	messages: map[string]string{
		FormTitle:          "Subscríbete á nosa lista",
		FormButton:         "Subscribirse",
		FormName:           "Nome",
		FormSurname:        "Apelidos",
		FormEmail:          "Correo",
		FormHoneypot:       "Se es humano, deixe este campo baleiro.",
		FormListMissing:    "Erro: Debe especificar o ID da lista.",
		FormListNotFound:   "Erro: A lista especificada non existe.",
		FormIncomplete:     "Datos do formulario incompletos.",
		SecurityError:      "Erro de seguridade. Por favor, inténteo de novo.",
		SpamDetected:       "Detección de spam. Solicitude rexeitada.",
		Throttled:          "Demasiados intentos. Por favor, agarde unha hora antes de volver intentalo.",
		NameRequired:       "O nome é obrigatorio.",
		NameTooLong:        "O nome non pode superar os %d caracteres.",
		SurnameRequired:    "Os apelidos son obrigatorios.",
		SurnameTooLong:     "Os apelidos non poden superar os %d caracteres.",
		EmailRequired:      "O correo é obrigatorio.",
		EmailInvalid:       "Por favor, introduza un correo válido.",
		EmailTooLong:       "O correo non pode superar os %d caracteres.",
		SpamContent:        "Os datos introducidos parecen conter contido spam.",
		Duplicate:          "Este correo xa está subscrito a esta lista.",
		PersistFailed:      "Erro ao procesar a subscrición. Por favor, inténteo de novo.",
		Success:            "Grazas! A súa subscrición procesouse correctamente.",
		PermissionDenied:   "Non tes permisos suficientes para acceder a esta páxina.",
		ExportInvalidFmt:   "Formato de exportación non válido.",
		ExportListNotFound: "A lista especificada non existe.",
		ExportAllLists:     "todas-listas",
		ExportFilePrefix:   "suscriptores",
		ColumnName:         "Nome",
		ColumnSurname:      "Apelido",
		ColumnEmail:        "Correo",
		ColumnDate:         "Data Subscrición",
		ColumnLists:        "Listas",
		BulkSent:           "Enviáronse %d de %d correos.",
	},
}

var spanish = &Catalog{
	Tag: language.Spanish,
	messages: map[string]string{
		FormTitle:          "Suscríbete a nuestra lista",
		FormButton:         "Suscribirse",
		FormName:           "Nombre",
		FormSurname:        "Apellidos",
		FormEmail:          "Correo",
		FormHoneypot:       "Si eres humano, deja este campo vacío.",
		FormListMissing:    "Error: Debe especificar el ID de la lista.",
		FormListNotFound:   "Error: La lista especificada no existe.",
		FormIncomplete:     "Datos del formulario incompletos.",
		SecurityError:      "Error de seguridad. Por favor, inténtelo de nuevo.",
		SpamDetected:       "Detección de spam. Solicitud rechazada.",
		Throttled:          "Demasiados intentos. Por favor, espere una hora antes de volver a intentarlo.",
		NameRequired:       "El nombre es obligatorio.",
		NameTooLong:        "El nombre no puede superar los %d caracteres.",
		SurnameRequired:    "Los apellidos son obligatorios.",
		SurnameTooLong:     "Los apellidos no pueden superar los %d caracteres.",
		EmailRequired:      "El correo es obligatorio.",
		EmailInvalid:       "Por favor, introduzca un correo válido.",
		EmailTooLong:       "El correo no puede superar los %d caracteres.",
		SpamContent:        "Los datos introducidos parecen contener spam.",
		Duplicate:          "Este correo ya está suscrito a esta lista.",
		PersistFailed:      "Error al procesar la suscripción. Por favor, inténtelo de nuevo.",
		Success:            "¡Gracias! Su suscripción se ha procesado correctamente.",
		PermissionDenied:   "No tienes permisos suficientes para acceder a esta página.",
		ExportInvalidFmt:   "Formato de exportación no válido.",
		ExportListNotFound: "La lista especificada no existe.",
		ExportAllLists:     "todas-listas",
		ExportFilePrefix:   "suscriptores",
		ColumnName:         "Nombre",
		ColumnSurname:      "Apellido",
		ColumnEmail:        "Correo",
		ColumnDate:         "Fecha Suscripción",
		ColumnLists:        "Listas",
		BulkSent:           "Se enviaron %d de %d correos.",
	},
}

var english = &Catalog{
	Tag: language.English,
	messages: map[string]string{
		FormTitle:          "Subscribe to our list",
		FormButton:         "Subscribe",
		FormName:           "Name",
		FormSurname:        "Surname",
		FormEmail:          "Email",
		FormHoneypot:       "If you are human, leave this field empty.",
		FormListMissing:    "Error: a list ID must be specified.",
		FormListNotFound:   "Error: the specified list does not exist.",
		FormIncomplete:     "Incomplete form data.",
		SecurityError:      "Security error. Please try again.",
		SpamDetected:       "Spam detected. Request rejected.",
		Throttled:          "Too many attempts. Please wait an hour before trying again.",
		NameRequired:       "Name is required.",
		NameTooLong:        "Name cannot exceed %d characters.",
		SurnameRequired:    "Surname is required.",
		SurnameTooLong:     "Surname cannot exceed %d characters.",
		EmailRequired:      "Email is required.",
		EmailInvalid:       "Please enter a valid email address.",
		EmailTooLong:       "Email cannot exceed %d characters.",
		SpamContent:        "The submitted data looks like spam.",
		Duplicate:          "This email is already subscribed to this list.",
		PersistFailed:      "Error processing the subscription. Please try again.",
		Success:            "Thank you! Your subscription has been processed.",
		PermissionDenied:   "You do not have sufficient permissions to access this page.",
		ExportInvalidFmt:   "Invalid export format.",
		ExportListNotFound: "The specified list does not exist.",
		ExportAllLists:     "all-lists",
		ExportFilePrefix:   "subscribers",
		ColumnName:         "Name",
		ColumnSurname:      "Surname",
		ColumnEmail:        "Email",
		ColumnDate:         "Subscription Date",
		ColumnLists:        "Lists",
		BulkSent:           "%d of %d emails sent.",
	},
}
