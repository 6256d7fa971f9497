// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

/*
Package services provides suture.Service wrappers for components that do not
implement Serve(ctx) themselves.

HTTP Server (HTTPServerService):
  - Wraps *http.Server, converting ListenAndServe to Serve
  - Graceful shutdown with a configurable timeout

Warm Start (WarmStartService):
  - Rebuilds the recommendation model from the stored view history
  - Retries failed loads with suture's backoff, up to a fixed number of attempts
  - Returns suture.ErrDoNotRestart once the load has finished

The event bus and the WAL retry loop implement suture.Service directly and
are added to the tree as they are.
*/
package services
