// Package http provides the REST handlers of the contracts service.
//
// ContractController serves /api/v1/contracts. Every operation runs
// through the call interceptor under the contractService service name with
// debug records on, so a request to GET /contracts/:id logs the controller
// call, the nested ContractService and UsersClient calls, and one
// performance record per call.
//
// Errors are answered as JSON bodies:
//
//	{"code": "contract.not.found", "message": "Could not find contract with id = 9"}
//
// Functional errors whose code names a missing entity are 404, refused
// operations 403, other functional errors and invalid payloads 400. An open
// users service breaker is 503 and anything unexpected 500.
package http
