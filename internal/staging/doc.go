// Package staging manages per-request upload workspaces and removes the ones
// a crashed or interrupted request left behind.
package staging
