// Package logger provides structured logging for scopekit using zerolog.
//
// It supports JSON and console output, level configuration, and named
// component loggers carrying the container's standard field keys.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Info("container built", logger.Fields(logger.FieldCount, 12))
package logger
