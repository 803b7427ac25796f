// Package template finalizes the main deployment template: literal token
// substitution with the resolved destination and artifact locations, a scan
// for leftover tokens, and validation through an external service.
package template
