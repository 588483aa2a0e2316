// Package domain contains the core business entities for the retrieval
// pipeline: documents, chunks, retrieval results, context bundles, and
// answers. Types here have no dependencies on adapters or services.
package domain
