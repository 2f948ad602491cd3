package model

// Decorator enriches a form template after it has been built from its record
// and before sessions are opened against it.
type Decorator interface {
	Decorate(*FormTemplate) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormTemplate) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(tpl *FormTemplate) error {
	return fn(tpl)
}

// ApplyDecorators runs decorators in order, stopping at the first error.
func ApplyDecorators(tpl *FormTemplate, decorators ...Decorator) error {
	if tpl == nil {
		return nil
	}
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(tpl); err != nil {
			return err
		}
	}
	return nil
}
