// Package oaserrors provides structured error types for the oaspipe router and SDK.
//
// Import path: github.com/erraggy/oaspipe/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to tell a bad request apart from a broken handler or an
// unexpected upstream response.
//
// # Error Types
//
//   - [InvalidRequestError]: the inbound request violates the operation contract
//     (negotiation, parameters, body). Carries the HTTP status to answer with.
//   - [ContractError]: a handler produced a reply outside its declared contract.
//     Always an internal error, never a client mistake.
//   - [UnexpectedResponseError]: the SDK received a response whose content type
//     is neither declared nor accepted, and the coercer could not resolve it.
//   - [IncompatibleValueError]: a value failed schema validation.
//   - [ConfigError]: invalid construction-time configuration or document.
//
// # Sentinel Errors
//
//   - [ErrInvalidRequest]: Matches any [InvalidRequestError]
//   - [ErrNotAcceptable]: Matches [InvalidRequestError] of kind [KindNotAcceptable]
//   - [ErrContract]: Matches any [ContractError]
//   - [ErrUnexpectedResponse]: Matches any [UnexpectedResponseError]
//   - [ErrIncompatibleValue]: Matches any [IncompatibleValueError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage
//
//	reply, err := client.Call(ctx, "getPet", sdk.Args{Path: map[string]any{"petId": 1}})
//	if err != nil {
//	    var unexpected *oaserrors.UnexpectedResponseError
//	    if errors.As(err, &unexpected) {
//	        log.Printf("server answered %s", unexpected.Received)
//	    }
//	}
//
// Router error handlers typically map invalid requests to their status:
//
//	var invalid *oaserrors.InvalidRequestError
//	if errors.As(err, &invalid) {
//	    http.Error(w, invalid.Error(), invalid.Status)
//	}
package oaserrors
