// Package templates holds the HTML components of the converter UI. The
// *_templ.go files are generated from the .templ sources with
// `templ generate`.
package templates
