package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
)

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	field := model.FieldDescriptor{
		Type:     model.FieldTypeSwitch,
		Metadata: map[string]string{MetadataKey: " TextArea "},
	}
	if got := reg.Resolve(field); got != model.WidgetTextArea {
		t.Fatalf("expected explicit widget to win, got %q", got)
	}

	field.Metadata[MetadataKey] = "rich-editor"
	if got := reg.Resolve(field); got != model.WidgetToggle {
		t.Fatalf("unknown explicit widgets must be ignored, got %q", got)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()
	opts := func(n int) []model.Option {
		out := make([]model.Option, n)
		for i := range out {
			out[i] = model.Option{Label: "o", Value: string(rune('a' + i))}
		}
		return out
	}

	cases := []struct {
		name   string
		field  model.FieldDescriptor
		expect model.Widget
	}{
		{"switch", model.FieldDescriptor{Type: model.FieldTypeSwitch}, model.WidgetToggle},
		{"select with options", model.FieldDescriptor{Type: model.FieldTypeSelect, Options: opts(2)}, model.WidgetSelect},
		{"select without options", model.FieldDescriptor{Type: model.FieldTypeSelect}, model.WidgetText},
		{"multiselect without options", model.FieldDescriptor{Type: model.FieldTypeMultiSelect}, model.WidgetTags},
		{"short radio", model.FieldDescriptor{Type: model.FieldTypeRadio, Options: opts(3)}, model.WidgetRadio},
		{"long radio", model.FieldDescriptor{Type: model.FieldTypeRadio, Options: opts(MaxRadioOptions + 1)}, model.WidgetSelect},
		{"unknown type", model.FieldDescriptor{Type: "signature"}, model.WidgetText},
		{"date family", model.FieldDescriptor{Type: model.FieldTypeWeek}, model.WidgetDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reg.Resolve(tc.field); got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestRegisterPriorityAndOrder(t *testing.T) {
	reg := &Registry{}
	always := func(model.FieldDescriptor) bool { return true }
	reg.Register(model.WidgetColor, 10, always)
	reg.Register(model.WidgetRange, 10, always)
	reg.Register("bogus", 100, always)

	if got := reg.Resolve(model.FieldDescriptor{}); got != model.WidgetColor {
		t.Fatalf("ties should keep registration order, got %q", got)
	}
	reg.Register(model.WidgetPassword, 20, always)
	if got := reg.Resolve(model.FieldDescriptor{}); got != model.WidgetPassword {
		t.Fatalf("higher priority should win, got %q", got)
	}
}

func TestDecorateRecordsWidgets(t *testing.T) {
	tpl := &model.FormTemplate{Fields: []model.FieldDescriptor{
		{Name: "active", Type: model.FieldTypeBoolean},
		{Name: "bio", Type: model.FieldTypeText, Metadata: map[string]string{MetadataKey: "textarea"}},
	}}
	if err := model.ApplyDecorators(tpl, NewRegistry()); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	got := []string{tpl.Fields[0].Metadata[MetadataKey], tpl.Fields[1].Metadata[MetadataKey]}
	if diff := cmp.Diff([]string{"toggle", "textarea"}, got); diff != "" {
		t.Fatalf("widgets mismatch (-want +got):\n%s", diff)
	}
}
