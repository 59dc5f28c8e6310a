// Package api exposes the documentation assistant over a JSON HTTP API.
//
// Endpoints:
//
//	GET  /            API descriptor
//	GET  /api/health  readiness and index statistics
//	GET  /api/sources configured documentation topics
//	POST /api/chat    ask a question, get an answer with citations
//	POST /api/index   trigger a reindex (optionally scoped to topics)
//
// The package owns request parsing, validation and response shaping only;
// all pipeline behavior lives in the rag package behind a small interface.
package api
