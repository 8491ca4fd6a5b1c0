// Package validation checks object keys before they are sent to a backend.
package validation
