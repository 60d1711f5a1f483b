// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware holds the HTTP plumbing shared by every handler.

WithLogging logs each request through the logrus logger with method, path,
client address, caller id, status and duration_ms. Server errors log at
warn.

CORS wraps the whole mux. It echoes the Origin, allows the X-User-ID
header, exposes Content-Disposition for CSV downloads, and answers
preflight requests with 204.

Handlers answer with JSONResponse or ErrorResponse and decode bodies with
ParseJSONBody, which caps bodies at 1 MiB:

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
