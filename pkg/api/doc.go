// Package api exposes the transition tables and per-volume state records
// over HTTP.
//
// Routes:
//
//	GET  /domains                          domain names
//	GET  /domains/{domain}                 states and transitions of one domain
//	POST /domains/{domain}/validate        validate {old, new}
//	POST /volumes                          run the create-volume flow (WithCreateFlow)
//	GET  /volumes/{id}/states/{domain}     current state
//	POST /volumes/{id}/states/{domain}     register {state}
//	PUT  /volumes/{id}/states/{domain}     transition to {state, quiet}
//	GET  /healthz                          liveness
//	GET  /readyz                           readiness checks
//
// Every body is a JSON envelope {code, data, error}. Failures map to status
// codes by error kind:
//
//	unknown domain       404 unknown_domain
//	unknown state        422 unknown_state
//	invalid transition   409 invalid_transition
//	missing record       404 not_found
//	duplicate record     409 already_exists
//	lost write race      409 concurrent_modification
//	invalid volume spec  400 bad_request
//	quota exhausted      409 quota_exceeded
//
// Server runs the router and shuts it down gracefully when its context ends.
package api
