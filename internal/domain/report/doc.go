// Package report contains the Report bounded context.
// This context holds the value objects that describe how a rendered
// projection report should look: output format, paper geometry,
// orientation, and page margins.
package report
