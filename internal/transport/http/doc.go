// Package http implements the HTTP handlers of the analytics API.
//
// Handlers stay thin: they parse the request, delegate to a service and
// translate errors into RFC 7807 problem responses through
// errors.ErrorHandler.
//
//	POST /api/reports                      multipart customers, orders, products
//	GET  /api/reports/download/{filename}  report archive or data file
//	GET  /api/health                       liveness summary
//	GET  /api/health/ready                 writable directories check
//	GET  /api/health/live                  runtime details
//	GET  /api/version                      build information
package http
