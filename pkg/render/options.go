package render

import "github.com/goliatone/go-formkit/pkg/session"

// RenderOptions carry per-request data for whole-form renderers.
type RenderOptions struct {
	// Entries pre-populate the rendered rows. An empty slice renders one
	// default entry.
	Entries []session.Entry
	// Errors are index-aligned with Entries.
	Errors []session.ErrorRecord
	// FormErrors are shown above the form.
	FormErrors []string
	// Groups limits output to the named groups. Empty renders all.
	Groups []string
	// Hidden adds hidden inputs such as the edit id or a CSRF token.
	Hidden map[string]string
	// Action and Method describe the submission target.
	Action string
	Method string
	// Locale and Translator localise labels through metadata keys.
	Locale     string
	Translator Translator
}
