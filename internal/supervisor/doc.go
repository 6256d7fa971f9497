// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

/*
Package supervisor runs the service's long-lived components under a suture v4
supervisor tree.

The tree has three layers so a crash in one cannot take down the others:

	ractso (root)
	├── data-layer     WAL retry loop
	├── events-layer   event bus, warm-start loader
	└── api-layer      HTTP server

Supervisor events (restarts, backoff, stop timeouts) are logged through
sutureslog, which receives an slog.Logger bridged onto zerolog.

Services that finish their work return suture.ErrDoNotRestart; everything
else runs until its context is canceled.
*/
package supervisor
