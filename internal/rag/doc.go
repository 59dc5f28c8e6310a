// Package rag coordinates the documentation pipeline: it drives ingestion
// (fetch, extract, chunk, index) and answers questions by retrieving
// relevant chunks and synthesizing a grounded response with citations.
//
// The Service is the single writer over the index. Ingestion runs are
// serialized; concurrent triggers are rejected with ErrIndexingInProgress
// rather than queued, so callers get an immediate, honest signal.
// Retrieval never blocks behind ingestion except during the brief
// in-memory swap inside the store.
package rag
