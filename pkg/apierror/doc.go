// Package apierror renders API failures as JSON bodies of the form
//
//	{"code": "module_disabled", "message": "...", "details": {}}
//
// Every error response carries all three keys; details is an empty object
// when there is nothing to add.
package apierror
