// Package sdk calls the operations of an OpenAPI document over HTTP.
//
// A Client is built once from a parsed document. Each Call resolves the
// operation by id, then:
//
//  1. substitutes path parameters and injects query and header parameters,
//     failing before anything is sent when a required one is missing;
//  2. picks the Accept value (the call's, then the operation default set by
//     WithOperationAccept, then DefaultAccept) and encodes the body with the
//     codec registered for its content type (application/json by default);
//  3. sends the request through the configured HTTPClient;
//  4. checks the response type against the clause declared for its status
//     and the Accept value, handing mismatches to the Coercer;
//  5. decodes the body and, with WithResponseValidation, validates it.
//
// Path substitution replaces only the first occurrence of each placeholder.
// Templates that repeat a parameter name keep the later occurrences as is.
//
// # Coercers
//
// DefaultCoercer turns every mismatch into an *oaserrors.UnexpectedResponseError
// naming the method, path, and the received, accepted and declared types.
// DiscardingCoercer instead drops undeclared text bodies, which is useful
// behind proxies that answer with plain text error pages:
//
//	client, err := sdk.New(doc, baseURL, sdk.WithCoercer(sdk.DiscardingCoercer))
//
// # Streams
//
// Bodies decoded as io.Reader, codec.Sequence or *codec.MultipartReader keep
// the response open. Iterate them to the end to observe errors and call
// Result.Close when done.
package sdk
