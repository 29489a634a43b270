// Package httpclient builds the identical POST requests a batch fans out
// and classifies each response into a per-request outcome: HTTP error
// statuses keep their real code, transport failures (DNS, connect, TLS,
// timeout, read) report status 0. Response bodies are drained and
// discarded so connections can be reused across the batch.
package httpclient
