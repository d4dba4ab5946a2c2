// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package server exposes the gateway over HTTP. It mounts the forwarding route
// /proxy/{from|to}/*, a health probe, optional Prometheus metrics and the UI
// page with its static assets behind permissive CORS, and maps every failure
// to a JSON error body.
package server
