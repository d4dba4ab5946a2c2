// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package forward performs the outbound half of the gateway. It builds the
// upstream request from a resolved target, injects the bearer token, sends the
// call over HTTP or HTTPS depending on the base URL, and buffers the upstream
// response so it can be relayed to the browser without its content encoding.
package forward
