// Package oaspipe runs HTTP APIs described by OpenAPI 3.x documents: it
// negotiates content types, validates payloads against the declared schemas
// and dispatches bodies to codecs by media type, on both sides of the wire.
//
// # Overview
//
// The same operation metadata drives a server and a client:
//
//   - router: serves operations, validating requests before handlers run and
//     checking handler replies against the declared responses
//   - sdk: calls operations, encoding requests and decoding responses with
//     the same negotiation rules
//
// Both are built from these packages:
//
//   - mediatype: media type matching and Accept parsing
//   - codec: encoders and decoders keyed by media type or glob
//   - opdef: operation definitions extracted from a parsed document
//   - schemareg: compiled schema validators keyed by operation and role
//   - negotiate: response clause resolution and response type checks
//   - config: YAML configuration with environment overrides
//   - oaserrors: the error types returned by every package
//   - logging: the logger interface and its slog adapter
//
// Documents are loaded with github.com/erraggy/oastools/parser. Resolving
// references at parse time lets every schema validate on its own.
//
// # Quick Start
//
// Serve a document:
//
//	doc, err := parser.ParseWithOptions(
//		parser.WithFilePath("petstore.yaml"),
//		parser.WithResolveRefs(true),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	r, err := router.New(doc,
//		router.WithHandler("getPet", func(ctx context.Context, req *router.Request) (router.Reply, error) {
//			pet, ok := store.Get(req.PathParams["petId"].(int64))
//			if !ok {
//				return router.Status(http.StatusNotFound), nil
//			}
//			return router.JSON(http.StatusOK, pet), nil
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	log.Fatal(http.ListenAndServe(":8080", r))
//
// Call it:
//
//	client, err := sdk.New(doc, "http://localhost:8080")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := client.Call(ctx, "getPet", sdk.Args{Params: map[string]any{"petId": 7}})
//
// # Content Negotiation
//
// Response clauses resolve a status to its declaration by exact code, then
// code range ("4XX"), then "default". Before the router decodes anything it
// checks that every clause declaring a body can produce a type the caller
// accepts, answering 406 otherwise. Accept parsing ignores q-values: a type
// is either accepted or not, and preference follows declaration order.
//
// # Error Handling
//
// Invalid requests surface as *oaserrors.InvalidRequestError carrying the
// HTTP status to answer with. Handler replies outside the declared contract
// are *oaserrors.ContractError and always become a 500 with no detail.
// Clients report responses they cannot accept as
// *oaserrors.UnexpectedResponseError. Every type matches a sentinel for
// errors.Is:
//
//	if errors.Is(err, oaserrors.ErrUnexpectedResponse) {
//		// the server answered outside the contract
//	}
//
// # Limitations
//
//   - Only OpenAPI 3.0 and 3.1 documents are supported.
//   - Cookie parameters are ignored.
//   - The sdk substitutes only the first occurrence of each path placeholder.
//   - TRACE operations cannot be served.
package oaspipe
