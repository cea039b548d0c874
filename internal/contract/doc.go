// Package contract is a sample contract-management service whose
// operations run through the loggable interceptor.
//
// Components:
//   - Service: contract operations, instrumented with debug records
//   - Repository: storage interface with an in-memory implementation
//   - Seeder: fills an empty repository from defaults or a YAML file
//
// Business rules:
//   - A USER may not add a VAC contract
//   - An ADMIN may not add a LOA contract
//   - Durations are at most 36 months
//
// Failures a client can cause (unknown ids, forbidden contract types) are
// returned as fault.FunctionalError values carrying a message code.
package contract
