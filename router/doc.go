// Package router serves the operations of an OpenAPI 3 document.
//
// A Router is built once from a parsed document. Construction extracts every
// operation, compiles every parameter, request body and response body
// schema, and installs a route for each operation that has a handler bound
// to it. Operations without a handler get no route at all unless a fallback
// handler is configured.
//
// # Request pipeline
//
// Each routed request goes through the same steps, in order:
//
//  1. Accept gate. If the Accept header rules out every response the
//     operation declares, the request fails with 406 before anything else
//     is looked at.
//  2. Parameters. Path, query and header values are coerced to their
//     declared types and validated (400).
//  3. Body. The content type must be declared (415); the body is decoded
//     with the codec registered for it (400 on failure) and validated
//     according to its shape. See BodyKind.
//  4. Handler. It returns a Reply or an error.
//  5. Reply. The status, type and payload are checked against the declared
//     response for the status; a mismatch is a contract violation and
//     answered with 500. The payload is then validated, encoded and written.
//
// # Handlers
//
// Handlers are bound explicitly by operation id:
//
//	r, err := router.New(doc,
//		router.WithHandler("getPet", func(ctx context.Context, req *router.Request) (router.Reply, error) {
//			pet, ok := pets[req.PathParams["petId"].(int64)]
//			if !ok {
//				return router.Status(http.StatusNotFound), nil
//			}
//			return router.JSON(http.StatusOK, pet), nil
//		}),
//	)
//
// # Errors
//
// Invalid requests surface as *oaserrors.InvalidRequestError carrying the
// status to answer with. In the default ErrorModeDelegate they go to the
// ErrorHandler (DefaultErrorHandler unless replaced). ErrorModePermissive
// answers them directly with a plain text message. Contract violations
// (*oaserrors.ContractError) and handler errors always go to the
// ErrorHandler and are logged at error level.
//
// # Routing strategies
//
// StdlibRouter matches path templates itself. ChiRouter installs the routes
// on a github.com/go-chi/chi/v5 mux, which may be shared with other routes.
package router
