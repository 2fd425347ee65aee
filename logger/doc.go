// Package logger provides structured logging for armkit clients using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying HTTP request fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("pipeline")
//	log.Debug("request sent", logger.Fields(logger.FieldMethod, "GET", logger.FieldStatusCode, 200))
package logger
