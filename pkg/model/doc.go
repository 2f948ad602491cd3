// Package model defines the typed form template consumed by the engine. Raw
// template records (as authored by the builder UI and stored as JSON or YAML)
// are decoded into FieldRecord/TemplateRecord values that enumerate every
// recognised key, then built into FieldDescriptor values filtered by the
// rendering surface. JSON-encoded sub-fields (OptionsJson, ApplicableJson)
// never fail to parse: malformed input degrades to an empty list.
//
// Field types map onto a closed Widget set through a single lookup table so
// renderers can switch exhaustively on Widget and fall back to plain text for
// anything unknown.
package model
