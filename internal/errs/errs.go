// Package errs defines the error shapes returned to API clients.
//
// ModelState is the ordered field -> messages collection that the
// validation package fills. HTTPError is the JSON body the global error
// handler writes, carrying ModelState entries as FieldErrors.
package errs
