// Package history stores completed deliberation runs for later inspection.
package history
