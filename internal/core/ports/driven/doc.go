// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding provider, the language model,
// and the vector store.
package driven
