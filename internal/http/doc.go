// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","user"} with the token also surfaced via
//     the `X-Session-Token` header and a `session_token` cookie.
//   - POST /users: registers an official account exchanging the `userDTO`
//     payload defined in user_handler.go.
//   - POST /password-resets: requests a password reset token for an email.
//     Always returns 202 Accepted so the endpoint cannot be used to probe for
//     registered addresses.
//   - PUT /password-resets/{token}: completes a reset with {"password"}.
//   - GET /rooms: lists the room catalog for authenticated principals.
//   - GET /bookings, POST /bookings: booking submission and the requester's
//     own booking history, exchanging the `bookingDTO` payload defined in
//     booking_handler.go.
//   - GET /bookings/pending: the manager approval queue.
//   - POST /bookings/{id}/approve, POST /bookings/{id}/decline: manager
//     decisions. Decline accepts an optional {"reason"}.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
