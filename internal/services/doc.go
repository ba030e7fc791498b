// Package services implements the client side of the playlist generation backend.
//
// # Gateway
//
// [GatewayService] issues exactly one POST with an empty body and a JSON
// content type to {base}{path}, where path defaults to [GeneratePath].
// The backend answers with the [models.GenerationResult] envelope.
//
// [GatewayService.Generate] never fails: transport errors, non-2xx statuses and
// undecodable bodies all become Success=false results whose Message describes
// the failure. [GatewayService.Do] exposes the same call with the error intact.
//
// # Error Handling
//
// Do wraps failures with sentinels from the shared package:
//   - [shared.ErrAPIRequest] : the request could not be built or sent
//   - [shared.ErrUnexpectedStatus] : the backend answered with a non-2xx status
//   - [shared.ErrMalformedResponse] : the body is not a result envelope
//
// There is no retry, backoff or timeout beyond what the [http.Client] provides.
package services
