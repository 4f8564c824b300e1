// Package downstream is the HTTP client for the database service at
// DATABASE_URL.
//
// The underlying http.Client is created on first use. Every call returns
// an *Error on failure whose Kind tells transport failures, timeouts,
// unexpected status codes and undecodable bodies apart.
package downstream
