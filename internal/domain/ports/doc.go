// Package ports defines the interfaces (ports) that adapters implement.
// Services depend on these rather than on concrete adapters so tests can
// substitute their own implementations.
package ports
