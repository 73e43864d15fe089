// Package ratelimit provides client-side pacing for Twitter API requests.
//
// The v1.1 endpoints used by this tool have small per-window quotas
// (followers/ids allows 15 requests per 15-minute window on app auth).
// Pacing requests ahead of time keeps most runs from ever hitting a 429;
// the retry package handles the ones that do.
package ratelimit
