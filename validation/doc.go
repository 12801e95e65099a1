// Package validation provides input validation for API handlers.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// the default for request payloads; the fluent Validator covers checks
// that tags cannot express.
//
// # Struct Tag Validation
//
//	type StateChange struct {
//	    Action string `json:"action" validate:"required,oneof=ready drain maint"`
//	}
//	err := validation.Struct(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("backend", backend).Pattern("backend", backend, `^[\w.:-]+$`)
//	err := v.Validate()
package validation
