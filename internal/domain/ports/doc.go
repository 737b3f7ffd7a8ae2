// Package ports defines the interfaces (ports) that external adapters must
// implement: the CRUD data hook, the AI enrichment provider and the remote
// option source. Tests substitute in-memory fakes for the HTTP client.
package ports
