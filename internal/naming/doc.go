// Package naming provides the case conversion used to synthesize operation ids.
//
// Operations that declare no operationId still need a stable handler key.
// OperationID derives one from the method and path template, for example
// "getPetsByPetId" for GET /pets/{petId}.
//
// As an internal package, these functions are not part of the public API
// and may change without notice.
package naming
