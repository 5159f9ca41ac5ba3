package i18n

import "golang.org/x/text/message"

// Localizer formats catalog messages for one locale.
type Localizer struct {
	locale  string
	printer *message.Printer
}

// Locale returns the catalog locale the Localizer resolved to.
func (l *Localizer) Locale() string { return l.locale }

// Text formats the message registered under key. Unknown keys are
// returned as-is.
func (l *Localizer) Text(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}
