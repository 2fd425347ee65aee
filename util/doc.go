// Package util holds small helpers shared by the armkit packages: pointer
// helpers for optional fields and redaction of URLs and headers before they
// reach a log line.
package util
