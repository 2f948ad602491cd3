package model

import "strings"

// FieldType is the configured input type of a field.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextArea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeEmail       FieldType = "email"
	FieldTypeDate        FieldType = "date"
	FieldTypeDateTime    FieldType = "datetime"
	FieldTypeTime        FieldType = "time"
	FieldTypeMonth       FieldType = "month"
	FieldTypeWeek        FieldType = "week"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeFile        FieldType = "file"
	FieldTypeImage       FieldType = "image"
	FieldTypeDocument    FieldType = "document"
	FieldTypeTags        FieldType = "tags"
	FieldTypeColor       FieldType = "color"
	FieldTypeRange       FieldType = "range"
	FieldTypePassword    FieldType = "password"
	FieldTypeTel         FieldType = "tel"
	FieldTypeURL         FieldType = "url"
	FieldTypeSwitch      FieldType = "switch"
	FieldTypeBoolean     FieldType = "boolean"
)

// Widget is the closed set of input families renderers must handle.
type Widget string

const (
	WidgetText        Widget = "text"
	WidgetTextArea    Widget = "textarea"
	WidgetNumber      Widget = "number"
	WidgetDate        Widget = "date"
	WidgetSelect      Widget = "select"
	WidgetMultiSelect Widget = "multiselect"
	WidgetRadio       Widget = "radio"
	WidgetCheckboxes  Widget = "checkboxes"
	WidgetFile        Widget = "file"
	WidgetTags        Widget = "tags"
	WidgetColor       Widget = "color"
	WidgetRange       Widget = "range"
	WidgetPassword    Widget = "password"
	WidgetToggle      Widget = "toggle"
)

// Widgets lists every widget renderers are expected to support.
func Widgets() []Widget {
	return []Widget{
		WidgetText, WidgetTextArea, WidgetNumber, WidgetDate, WidgetSelect,
		WidgetMultiSelect, WidgetRadio, WidgetCheckboxes, WidgetFile, WidgetTags,
		WidgetColor, WidgetRange, WidgetPassword, WidgetToggle,
	}
}

// Kind describes how a field type is rendered and what its zero value is.
// InputType carries the HTML input type hint for text-like widgets.
type Kind struct {
	Widget    Widget
	InputType string
	Boolean   bool
	Multiple  bool
	Choices   bool
}

// kinds holds one row per supported type. Adding a type means adding a row.
var kinds = map[FieldType]Kind{
	FieldTypeText:        {Widget: WidgetText, InputType: "text"},
	FieldTypeTextArea:    {Widget: WidgetTextArea},
	FieldTypeNumber:      {Widget: WidgetNumber, InputType: "number"},
	FieldTypeEmail:       {Widget: WidgetText, InputType: "email"},
	FieldTypeDate:        {Widget: WidgetDate, InputType: "date"},
	FieldTypeDateTime:    {Widget: WidgetDate, InputType: "datetime-local"},
	FieldTypeTime:        {Widget: WidgetDate, InputType: "time"},
	FieldTypeMonth:       {Widget: WidgetDate, InputType: "month"},
	FieldTypeWeek:        {Widget: WidgetDate, InputType: "week"},
	FieldTypeSelect:      {Widget: WidgetSelect, Choices: true},
	FieldTypeMultiSelect: {Widget: WidgetMultiSelect, Choices: true, Multiple: true},
	FieldTypeRadio:       {Widget: WidgetRadio, Choices: true},
	FieldTypeCheckbox:    {Widget: WidgetCheckboxes, Choices: true, Multiple: true},
	FieldTypeFile:        {Widget: WidgetFile, InputType: "file"},
	FieldTypeImage:       {Widget: WidgetFile, InputType: "file"},
	FieldTypeDocument:    {Widget: WidgetFile, InputType: "file"},
	FieldTypeTags:        {Widget: WidgetTags, Multiple: true},
	FieldTypeColor:       {Widget: WidgetColor, InputType: "color"},
	FieldTypeRange:       {Widget: WidgetRange, InputType: "range"},
	FieldTypePassword:    {Widget: WidgetPassword, InputType: "password"},
	FieldTypeTel:         {Widget: WidgetText, InputType: "tel"},
	FieldTypeURL:         {Widget: WidgetText, InputType: "url"},
	FieldTypeSwitch:      {Widget: WidgetToggle, Boolean: true},
	FieldTypeBoolean:     {Widget: WidgetToggle, Boolean: true},
}

var typeAliases = map[string]FieldType{
	"string":         FieldTypeText,
	"input":          FieldTypeText,
	"integer":        FieldTypeNumber,
	"decimal":        FieldTypeNumber,
	"datetime-local": FieldTypeDateTime,
	"multi-select":   FieldTypeMultiSelect,
	"multi_select":   FieldTypeMultiSelect,
	"checkbox-group": FieldTypeCheckbox,
	"checkboxes":     FieldTypeCheckbox,
	"upload":         FieldTypeFile,
	"phone":          FieldTypeTel,
	"bool":           FieldTypeBoolean,
	"toggle":         FieldTypeSwitch,
}

// Kind returns the dispatch entry for t, falling back to plain text.
func (t FieldType) Kind() Kind {
	if kind, ok := kinds[t]; ok {
		return kind
	}
	return kinds[FieldTypeText]
}

// Known reports whether t has its own row in the kinds table.
func (t FieldType) Known() bool {
	_, ok := kinds[t]
	return ok
}

// ParseFieldType normalises a configured type string. Unknown values are kept
// lower-cased so they round-trip, and render as text.
func ParseFieldType(raw string) FieldType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return FieldTypeText
	}
	if alias, ok := typeAliases[key]; ok {
		return alias
	}
	return FieldType(key)
}

// FieldTypes lists the supported types in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText, FieldTypeTextArea, FieldTypeNumber, FieldTypeEmail,
		FieldTypeDate, FieldTypeDateTime, FieldTypeTime, FieldTypeMonth,
		FieldTypeWeek, FieldTypeSelect, FieldTypeMultiSelect, FieldTypeRadio,
		FieldTypeCheckbox, FieldTypeFile, FieldTypeImage, FieldTypeDocument,
		FieldTypeTags, FieldTypeColor, FieldTypeRange, FieldTypePassword,
		FieldTypeTel, FieldTypeURL, FieldTypeSwitch, FieldTypeBoolean,
	}
}
