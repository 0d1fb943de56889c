// Package placeholder resolves template placeholder tokens.
//
// Template bodies carry tokens in two wire forms:
//
//	{{field:contractor.firmname}}
//	{{field:table:itemslist}}
//
// Keys use lowercase ASCII letters, digits, '.' and '_'. The package
// normalizes keys, migrates legacy spellings, composes the per-render field
// registry from layered sources, validates bodies against a field catalog
// and renders HTML while collecting unresolved fields.
package placeholder
